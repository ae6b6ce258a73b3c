package naming

// MetadataFileName is the name of the build manifest file in storage.
const MetadataFileName = "manifest.json"
