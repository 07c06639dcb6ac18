/*
Package session coordinates concurrent access to stored player sessions.

A player may fire several requests at once (double clicks, retries). The Manager
serializes them per session ID with an in-process mutex and, when configured, a
distributed lock shared by every replica, then delegates persistence to a
ports.SessionStore adapter.
*/
package session
