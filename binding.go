package boreas

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// dateOnlyLayout parses calendar dates with no time-of-day component. A
// general date-time parser would accept or require one; a date parameter
// must not.
const dateOnlyLayout = "2006-01-02"

// bindArguments produces the fully-typed argument list for a matched route,
// in declared parameter order. Per parameter the sources are tried
// top-to-bottom, first success wins: named path capture, query-string value
// (when the route enables query mapping), declared default. A parameter
// with none of the three fails the binding unless it is nullable.
func bindArguments(route *RouteDescriptor, params PathParams, request *Request, ctx *Context) ([]any, error) {
	declared := route.Handler().Params()
	args := make([]any, len(declared))

	for i, param := range declared {
		switch param.Kind {
		case SessionParam:
			args[i] = ctx.Session
			continue
		case RequestParam:
			args[i] = request
			continue
		case BodyParam:
			value, err := bindBody(param, request)
			if err != nil {
				return nil, err
			}
			args[i] = value
			continue
		}

		if raw, ok := params[param.Name]; ok {
			decoded, err := url.PathUnescape(raw)
			if err != nil {
				return nil, &BindingError{Param: param.Name, Raw: raw, Err: err}
			}
			value, err := convertValue(param, decoded)
			if err != nil {
				return nil, &BindingError{Param: param.Name, Raw: decoded, Err: err}
			}
			args[i] = value
			continue
		}

		if route.QueryStringMapping() {
			// Present-but-empty still counts as present.
			if raw, ok := request.QueryGet(param.Name); ok {
				value, err := convertValue(param, raw)
				if err != nil {
					return nil, &BindingError{Param: param.Name, Raw: raw, Err: err}
				}
				args[i] = value
				continue
			}
		}

		if param.HasDefault {
			// Defaults are declared values, used verbatim.
			args[i] = param.Default
			continue
		}

		if param.Nullable {
			args[i] = nil
			continue
		}

		return nil, &BindingError{Param: param.Name, Err: ErrParamRequired}
	}

	return args, nil
}

// convertValue converts one raw textual value to the parameter's declared
// kind. For nullable parameters an empty raw value maps to nil without
// invoking the converter. A conversion failure is distinct from "parameter
// absent".
func convertValue(param HandlerParam, raw string) (any, error) {
	if param.Nullable && raw == "" {
		return nil, nil
	}

	switch param.Kind {
	case StringParam:
		return raw, nil
	case IntParam:
		return strconv.Atoi(raw)
	case Int64Param:
		return strconv.ParseInt(raw, 10, 64)
	case Float64Param:
		return strconv.ParseFloat(raw, 64)
	case BoolParam:
		return strconv.ParseBool(raw)
	case UUIDParam:
		return parseCanonicalUUID(raw)
	case DateParam:
		return time.Parse(dateOnlyLayout, raw)
	}

	return nil, errors.New("parameter kind " + param.Kind.String() + " cannot be bound from text")
}

// parseCanonicalUUID accepts only the canonical 36-character hyphenated
// form. uuid.Parse alone would also accept urn: and braced variants, which
// are not valid in a path segment.
func parseCanonicalUUID(raw string) (uuid.UUID, error) {
	if len(raw) != 36 {
		return uuid.UUID{}, errors.New("uuid must be in canonical 36-character form")
	}
	return uuid.Parse(raw)
}

// bindBody binds the raw envelope payload. An absent or null body falls
// back to the declared default, then to nil for nullable parameters, and
// otherwise fails the binding.
func bindBody(param HandlerParam, request *Request) (any, error) {
	body := request.Body
	if len(body) != 0 && string(body) != "null" {
		return body, nil
	}
	if param.HasDefault {
		return param.Default, nil
	}
	if param.Nullable {
		return nil, nil
	}
	return nil, &BindingError{Param: param.Name, Err: ErrParamRequired}
}
