package clientdist

import _ "embed"

// VireoJS is the client runtime served at "/_vireo/client.js". It
// speaks the binary frame protocol: handshake, event capture through
// data-hid targets, patch application, acks, and resync.
//
//go:embed vireo.js
var VireoJS []byte
