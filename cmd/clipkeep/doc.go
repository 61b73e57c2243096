// Command clipkeep inspects and maintains the local session store: listing
// sessions with data at rest, previewing a restore, reaping expired
// sessions, and wiping a session outright.
package main
