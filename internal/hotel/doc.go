// Package hotel is the room/lobby engine: rooms are created with unique
// ids, users join and leave under concurrent access, room state is
// mutated through application-supplied logic and broadcast to all
// members, and idle rooms are reclaimed by a background sweep.
//
// The state type and the message handling are pluggable; the engine
// only manages lifecycle, membership and the locking that keeps them
// consistent.
package hotel
