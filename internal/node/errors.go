package node

import "errors"

// ErrStorageCorruption is fatal: cmd/robot logs and exits rather than
// retrying.
var ErrStorageCorruption = errors.New("node: storage corruption detected")
