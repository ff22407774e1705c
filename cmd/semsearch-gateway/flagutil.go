package main

import "strconv"

// int32Value adapts an int32 field to the flag.Value interface; the
// standard library only ships Int/Int64 flag types.
type int32Value int32

func newInt32Value(defaultValue int32, p *int32) *int32Value {
	*p = defaultValue
	return (*int32Value)(p)
}

func (i *int32Value) Set(s string) error {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return err
	}
	*i = int32Value(v)
	return nil
}

func (i *int32Value) String() string {
	return strconv.FormatInt(int64(*i), 10)
}
