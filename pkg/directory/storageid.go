package directory

import "strings"

// ProviderName identifies this storage provider. It prefixes every user id
// handed to the host so ids from this directory are distinguishable from ids
// issued by other configured directories.
const ProviderName = "http"

const idSeparator = ":"

// StorageID wraps an external (remote-assigned or synthetic local) id with
// the provider prefix.
func StorageID(externalID string) string {
	return ProviderName + idSeparator + externalID
}

// ExternalID strips the provider prefix from a storage-scoped id. Ids
// without the prefix are returned unchanged.
func ExternalID(id string) string {
	return strings.TrimPrefix(id, ProviderName+idSeparator)
}
