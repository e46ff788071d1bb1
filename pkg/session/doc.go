/*
Package session ties a user's stored credential to the workspace service.

A Session is created from a CredentialStore, logs into at most one workspace, and owns
whatever resources were registered with WithCloser. Close releases them exactly once,
however many times it is called.
*/
package session
