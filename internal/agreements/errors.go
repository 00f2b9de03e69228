package agreements

import "errors"

var ErrNotFound = errors.New("agreement not found")
