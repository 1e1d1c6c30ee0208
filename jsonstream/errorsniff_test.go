package jsonstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffErrorCode(t *testing.T) {
	type test struct {
		title   string
		header  string
		body    string
		code    string
		message string
	}
	for _, test := range []test{{
		title: "type field with namespace",
		body:  `{"__type":"com.amazonaws.service#ThrottlingException","message":"slow down"}`,
		code:  "ThrottlingException",
		message: "slow down",
	}, {
		title: "code field",
		body:  `{"code":"AccessDenied","Message":"nope"}`,
		code:  "AccessDenied",
		message: "nope",
	}, {
		title:  "header wins over body",
		header: "ResourceNotFoundException",
		body:   `{"__type":"Other"}`,
		code:   "ResourceNotFoundException",
	}, {
		title:  "uri suffix stripped",
		header: "ThrottlingException:http://internal.amazon.com/coral/",
		code:   "ThrottlingException",
	}, {
		title: "empty body",
		body:  "",
	}} {
		t.Run(test.title, func(t *testing.T) {
			code, message := SniffErrorCode(test.header, []byte(test.body))
			assert.Equal(t, test.code, code)
			assert.Equal(t, test.message, message)
		})
	}
}
