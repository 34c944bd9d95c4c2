// Package dedupe detects duplicate tracks in a playlist read and plans the mutations that remove them.
//
// Everything here is pure: functions take the records of one read and return values derived from them. Network
// access, logging and cancellation belong to the tasks package, which feeds this one.
//
// # Detection
//
// [Analyze] keeps the first occurrence of every identity as canonical and counts the copies after it.
//
// # Planning
//
// Removal plans are ordered by descending position so that deleting a later entry never shifts an earlier one.
// [PlanReinsertion] restores a single copy of each collapsed identity as close as possible to where its earliest
// occurrence used to be.
package dedupe
