package services

import "github.com/dmitrijs2005/pinboard/internal/common"

var (
	ErrNotAuthenticated = common.ErrNotAuthenticated
	ErrForbidden        = common.ErrForbidden
	ErrSuperseded       = common.ErrSuperseded
)
