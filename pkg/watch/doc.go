// Package watch reloads a file when it changes on disk.
//
// File(ctx, path, reload) uses fsnotify to watch a single file and calls
// reload after every write or create event. Atomic-save editors (vim,
// VS Code) replace the file through a rename, so the watch is re-added after
// each reload to follow the new inode.
//
// A failing reload is logged and the watch continues; callers keep whatever
// state they loaded last. Both the server configuration and the CLI case
// files are watched through this package.
package watch
