package http

import (
	"context"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
)

const (
	headerContentType = "Content-Type"
	formContentType   = "application/x-www-form-urlencoded; charset=UTF-8"
)

// requestEncoder turns a Request into a transport request for one method family.
type requestEncoder interface {
	encode(ctx context.Context, method string, req *Request) (*nethttp.Request, error)
}

// queryEncoder serves GET, HEAD, OPTIONS, DELETE and TRACE: parameters are
// merged into the URL query, replacing same-named existing entries.
type queryEncoder struct{}

func (queryEncoder) encode(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for name, value := range req.Params {
			q.Set(name, value)
		}
		u.RawQuery = q.Encode()
	}
	return nethttp.NewRequestWithContext(ctx, method, u.String(), nethttp.NoBody)
}

// formEncoder serves POST, PUT and PATCH: parameters become a UTF-8
// form-encoded body. Without parameters the raw Body is sent as is.
type formEncoder struct{}

func (formEncoder) encode(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	if len(req.Params) > 0 {
		form := make(url.Values, len(req.Params))
		for name, value := range req.Params {
			form.Set(name, value)
		}
		httpReq, err := nethttp.NewRequestWithContext(ctx, method, req.URL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set(headerContentType, formContentType)
		return httpReq, nil
	}

	var body io.Reader = nethttp.NoBody
	if req.Body != nil {
		body = strings.NewReader(*req.Body)
	}
	return nethttp.NewRequestWithContext(ctx, method, req.URL, body)
}

func encoderFor(method string) requestEncoder {
	switch method {
	case nethttp.MethodPost, nethttp.MethodPut, nethttp.MethodPatch:
		return formEncoder{}
	default:
		return queryEncoder{}
	}
}
