package restaurants

import (
	"errors"

	"github.com/mnuddindev/winoreat/internal/naver"
	"github.com/mnuddindev/winoreat/pkg/utils"
)

// TranslateSearchError maps a failed place or image search onto the
// application taxonomy. Errors that are not Naver failures pass through.
func TranslateSearchError(err error) error {
	var nerr *naver.Error
	if !errors.As(err, &nerr) {
		return err
	}
	switch nerr.Kind {
	case naver.KindIncorrectQuery, naver.KindInvalidDisplay, naver.KindInvalidStart,
		naver.KindInvalidSort, naver.KindMalformedEncoding, naver.KindUnknown:
		return utils.NewError(utils.KindBadRequest, nerr.Message, nerr.Code)
	case naver.KindAuthentication:
		return utils.NewError(utils.KindForbidden, nerr.Message, nerr.Code)
	case naver.KindInvalidSearchAPI:
		return utils.NewError(utils.KindNotFound, nerr.Message, nerr.Code)
	case naver.KindSystemError:
		return utils.NewError(utils.KindInternal, nerr.Message, nerr.Code)
	}
	return err
}

// TranslateGeocodeError maps a failed geocode lookup onto the application taxonomy.
func TranslateGeocodeError(err error) error {
	var nerr *naver.Error
	if !errors.As(err, &nerr) {
		return err
	}
	switch nerr.Kind {
	case naver.KindInvalidParameter:
		return utils.NewError(utils.KindBadRequest, nerr.Message, nerr.Code)
	case naver.KindSystemError:
		return utils.NewError(utils.KindInternal, nerr.Message, nerr.Code)
	}
	return err
}
