package commonerrors_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := commonerrors.New(commonerrors.ErrorTypeValidation, "value exceeds column size").
		WithDetail("column", "name").
		WithDetail("size", 10)

	fmt.Println(err.Error())
	size, _ := err.Detail("size")
	fmt.Println(size)

	// Output:
	// validation: value exceeds column size
	// 10
}

// ExampleWrap shows how sentinels survive wrapping.
func ExampleWrap() {
	err := commonerrors.Wrap(io.EOF, commonerrors.ErrorTypeFile, "failed to read table file").
		WithDetail("file", "people.csv")

	if commonerrors.IsType(err, commonerrors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}
	if errors.Is(err, io.EOF) {
		fmt.Println("Original error was EOF")
	}

	// Output:
	// This is a file error
	// Original error was EOF
}

// ExampleIsType shows that categories are matched along the whole chain.
func ExampleIsType() {
	inner := commonerrors.New(commonerrors.ErrorTypeNotFound, "no such column")
	outer := commonerrors.Wrap(inner, commonerrors.ErrorTypeArgument, "invalid sort column")

	fmt.Println(commonerrors.IsType(outer, commonerrors.ErrorTypeArgument))
	fmt.Println(commonerrors.IsType(outer, commonerrors.ErrorTypeNotFound))
	fmt.Println(commonerrors.IsType(outer, commonerrors.ErrorTypeConfig))
	fmt.Println(commonerrors.TypeOf(outer))

	// Output:
	// true
	// true
	// false
	// argument
}
