// Package types defines the cultivation records exchanged with the mytree
// backend (trees, strains, batches, images, logs), their enumerations,
// client configuration, and the standard errors shared by the client
// packages.
package types
