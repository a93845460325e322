package server

import "github.com/fieldbuslab/modserve/pdu"

// A RequestValidator inspects one logical request before any of its
// mutations are applied to the process image. Returning
// pdu.ExceptionOK allows the request; any other code vetoes it, and the
// processing routine must leave the image untouched for that request.
//
// The server calls the validator at most once per logical request, always
// before the first mutation from that request.
type RequestValidator func(req pdu.Request) pdu.ExceptionCode

// ValidateRequest runs the configured validator against a request. Without a
// configured validator every request is allowed.
func (s *Server) ValidateRequest(req pdu.Request) pdu.ExceptionCode {
	v := s.validator.Load()
	if v == nil {
		return pdu.ExceptionOK
	}

	return (*v)(req)
}

// SetValidator installs the request validator hook. A nil validator allows
// every request.
func (s *Server) SetValidator(v RequestValidator) {
	if v == nil {
		s.validator.Store(nil)
		return
	}

	s.validator.Store(&v)
}
