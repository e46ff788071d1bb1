/*
Package ports defines the driven ports (interfaces) of the workspace service.

These interfaces decouple sessions, stages, and transactions from the concrete storage,
so the same deployment runs against memory, local files, Redis, or a remote HTTP service.

# Key Interfaces

  - WorkspaceStore: loads and commits workspace snapshots with optimistic versioning.
  - CredentialStore: keeps the credential written by `login`.
  - DistributedLocker: serializes commits to a workspace across processes.
*/
package ports
