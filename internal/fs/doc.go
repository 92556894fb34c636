// Package fs abstracts the filesystem operations used to persist index
// snapshots, so tests can inject I/O failures.
//
//   - [LocalFS] is the production implementation on top of package os.
//   - [FaultyFS] wraps another FileSystem and fails writes, syncs, closes
//     or renames on demand.
//   - [WriteFileAtomic] writes through a temporary file and renames it into
//     place, so readers never observe a partial snapshot.
//
// Operations take no context.Context: local file operations are not
// interruptible at the syscall level.
package fs
