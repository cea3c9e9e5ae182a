package base

import (
	"bufio"
	"bytes"
	"strconv"
)

// Response is a single RTSP response.
type Response struct {
	StatusCode    StatusCode
	StatusMessage string
	Header        Header
	Body          []byte
}

// NewResponse builds a response with the standard reason phrase for code
// and an initialized, empty header set.
func NewResponse(code StatusCode) *Response {
	return &Response{
		StatusCode:    code,
		StatusMessage: StatusMessage(code),
		Header:        make(Header),
	}
}

// Write serializes the response to bw and flushes it. Responses are always
// written in a single buffered pass so that the Connection Handler can hand
// the whole thing to one send call, per the no-partial-write contract.
func (res *Response) Write(bw *bufio.Writer) error {
	if res.Header == nil {
		res.Header = make(Header)
	}
	if res.StatusMessage == "" {
		res.StatusMessage = StatusMessage(res.StatusCode)
	}

	_, err := bw.WriteString(protocolRTSP10 + " " +
		strconv.Itoa(int(res.StatusCode)) + " " + res.StatusMessage + "\r\n")
	if err != nil {
		return err
	}

	if len(res.Body) != 0 {
		res.Header.Set("Content-Length", strconv.Itoa(len(res.Body)))
	}

	if err := res.Header.write(bw); err != nil {
		return err
	}

	if len(res.Body) != 0 {
		if _, err := bw.Write(res.Body); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Marshal serializes the response to a byte slice, for tests and for the
// fixed response buffer described in the Connection Handler design.
func (res *Response) Marshal() ([]byte, error) {
	buf := &bytes.Buffer{}
	bw := bufio.NewWriter(buf)
	if err := res.Write(bw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
