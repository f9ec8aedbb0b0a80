package optim

import "errors"

var ErrBadOptions = errors.New("optim: invalid options")
