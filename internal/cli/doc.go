// Package cli provides the interactive ChronoChat journal.
//
// It wires configuration, the key/value store, the passcode gate, the note
// store and backups, then runs a REPL. Typical flow: unlock with the passcode
// (or create one on first run), then compose and browse notes.
//
// Commands:
//   - add                    compose a note (#tags, +image <path>, +file <path>)
//   - list | tag | tags      browse the timeline, by tag
//   - date | dates           browse by calendar day
//   - delete <id>            remove a note
//   - export | import <path> backup and restore
//   - showtags               toggle tag display
//   - passcode set|change|reset, security, lock
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
