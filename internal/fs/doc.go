// Package fs abstracts the file operations LocalStore uses to publish blobs,
// so tests can inject write, sync, close and rename failures.
//
// Production code uses [Default], which is [LocalFS]. Tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailOnSync: true})
//	// hand ffs to the LocalStore under test
//
// Calls take no context.Context; local file operations cannot be interrupted
// at the syscall level. Remote stores carry contexts on their own API.
package fs
