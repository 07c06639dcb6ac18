/*
Package ports defines the driven ports (interfaces) for the Novella engine.

These interfaces decouple the story engine from content sources, session
persistence and asset serving.

# Key Interfaces

  - ContentLoader: reads locale bundles (e.g., from YAML files or memory).
  - ContentStore: read-only, concurrently shared view of the loaded bundles.
  - SessionStore: persists player sessions between requests.
  - DistributedLocker: serializes access to a session across replicas.
*/
package ports
