// Package repo holds the gorm repositories, one per entity.
package repo

import "errors"

var ErrUserAlreadyExist = errors.New("user already exist")
