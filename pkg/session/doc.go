/*
Package session implements flow-scoped draft access orchestration.

It serializes reads and writes per flow ID, integrating in-process locks
with an optional distributed locker so several engine replicas can share
one draft store without interleaving a flow's writes.
*/
package session
