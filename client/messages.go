package client

import (
	"errors"

	"github.com/ManiEids/vef2hop2/domain"
)

// Message turns err into a message for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	switch {
	case errors.Is(err, ErrBadCredentials):
		return "Rangt notandanafn eða lykilorð"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return "Ekki heimild"
	case errors.Is(err, ErrUnexpectedResponse):
		return "Óvænt svar frá vefþjón"
	case errors.Is(err, ErrEndpointNotFound):
		return "Endapunktur fannst ekki"
	case errors.Is(err, ErrNetwork):
		return "Ekki náðist samband við vefþjón"
	case errors.Is(err, domain.ErrNotFound):
		return "Fannst ekki"
	case errors.Is(err, domain.ErrConflict):
		return "Þetta er þegar til"
	case errors.Is(err, domain.ErrInvalid):
		return "Ógild gögn"
	case errors.As(err, &se):
		return se.Error()
	}
	return "Óskilgreind villa"
}
