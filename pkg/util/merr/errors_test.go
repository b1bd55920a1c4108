// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"context"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrUnsupportedType("func()")
	err = errors.Wrap(err, "failed to encode value")
	s.ErrorIs(err, ErrUnsupportedType)
	s.Equal(Code(ErrUnsupportedType), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(errUnexpected.errCode, Code(errors.New("plain")))

	sameCodeErr := newCollateError("new error", ErrMalformedEncoding.errCode, false)
	s.True(sameCodeErr.Is(ErrMalformedEncoding))
}

func (s *ErrSuite) TestStatus() {
	err := WrapErrMalformedEncoding(3, []byte("5x"), "bad tag")
	status := StatusOf(err)
	restoredErr := Error(status)

	s.ErrorIs(err, restoredErr)
	s.Equal(int32(0), StatusOf(nil).Code)
	s.Nil(Error(&Status{}))
}

func (s *ErrSuite) TestMalformedEncodingMessage() {
	err := WrapErrMalformedEncoding(7, []byte("4abc\x00"), "no terminator found")
	s.Contains(err.Error(), "offset=7")
	s.Contains(err.Error(), `context="4abc\x00"`)
	s.Contains(err.Error(), "no terminator found")

	long := WrapErrMalformedEncoding(0, []byte("0123456789abcdefghij"), "bad tag")
	s.Contains(long.Error(), `"0123456789abcdef"...`)
}

func (s *ErrSuite) TestWrap() {
	// Codec 相关错误。
	s.ErrorIs(WrapErrUnsupportedType("chan int"), ErrUnsupportedType)
	s.ErrorIs(WrapErrMalformedEncoding(0, nil, "empty"), ErrMalformedEncoding)

	// Keyfile 相关错误。
	s.ErrorIs(WrapErrKeyfileVersion("1.0.0", "2.0.0"), ErrKeyfileVersion)
	s.ErrorIs(WrapErrFrameTooLarge(10, 5), ErrFrameTooLarge)

	// Service 相关错误。
	s.ErrorIs(WrapErrServiceInternal("never throw out"), ErrServiceInternal)

	// IO 相关错误。
	s.ErrorIs(WrapErrIoKeyNotFound("test_key", "failed to read"), ErrIoKeyNotFound)
	s.ErrorIs(WrapErrIoFailed("test_key", os.ErrClosed), ErrIoFailed)
	s.ErrorIs(WrapErrIoFailedReason("disk full"), ErrIoFailed)
	s.ErrorIs(WrapErrIoUnexpectEOF("test_key", os.ErrClosed), ErrIoUnexpectEOF)
	s.Nil(WrapErrIoFailed("test_key", nil))

	// 参数相关错误。
	s.ErrorIs(WrapErrParameterInvalid(8, 1, "failed to create"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidRange(1, 1<<16, 0, "workers should be in range"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("bad flag %s", "--hex"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterMissing("file", "no file parameter"), ErrParameterMissing)
	s.ErrorIs(WrapErrParameterTooLarge("unit test"), ErrParameterTooLarge)

	s.ErrorIs(WrapErrOperationNotSupported("frobnicate"), ErrOperationNotSupported)
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(InputError, GetErrorType(WrapErrUnsupportedType("func()")))
	s.Equal(InputError, GetErrorType(WrapErrMalformedEncoding(1, nil, "bad")))
	s.Equal(SystemError, GetErrorType(WrapErrIoFailedReason("disk")))
	s.Equal(InputError, GetErrorType(WrapErrAsInputError(ErrIoFailed)))
	s.Equal(InputError, GetErrorType(WrapErrAsInputErrorWhen(ErrIoFailed, ErrIoFailed)))
	s.Equal(SystemError, GetErrorType(WrapErrAsInputErrorWhen(ErrIoFailed, ErrParameterMissing)))
	s.Equal("input_error", InputError.String())
}

func (s *ErrSuite) TestRetryable() {
	s.False(IsRetryableErr(WrapErrMalformedEncoding(0, nil, "bad")))
	s.False(IsRetryableErr(WrapErrUnsupportedType("func()")))
	s.True(IsRetryableErr(WrapErrIoUnexpectEOF("k", os.ErrClosed)))
	s.True(IsCanceledOrTimeout(errors.Wrap(context.Canceled, "stop")))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrUnsupportedType("func()"), WrapErrMalformedEncoding(1, nil, "bad"))
	s.Equal(Code(ErrMalformedEncoding), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
