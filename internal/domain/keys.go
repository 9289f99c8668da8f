package domain

// KeyPrefix namespaces every key orgrank writes to the shared key-value store.
const KeyPrefix = "orgrank:"
