package template

import "fmt"

func errArgCount(i int) error {
	return fmt.Errorf("missing argument at position %d", i)
}

func errArgType(i int, want string, got any) error {
	return fmt.Errorf("argument %d must be %s, got %T", i, want, got)
}
