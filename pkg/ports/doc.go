/*
Package ports defines the driven ports (interfaces) for the formflow engine.

These interfaces decouple the engine from external implementations, allowing services
to be stored in memory, in Redis or as files.

# Key Interfaces

  - DocumentStore: Responsible for persisting and loading service documents.
  - DistributedLocker: Serializes concurrent writes to the same service.

RunDocumentStoreContract and RunLockerContract verify adapters against these contracts.
*/
package ports
