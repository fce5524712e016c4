package engine

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invoke calls fn with bound values first and args after them. Args are
// converted to the parameter types only when the value survives the
// conversion unchanged. method is the name the caller used, target the Go
// method actually called when it differs.
func invoke(method, target string, fn reflect.Value, args []any, bound ...reflect.Value) (any, error) {
	t := fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}

	total := len(bound) + len(args)
	if total < fixed || (!t.IsVariadic() && total > fixed) {
		want := fmt.Sprintf("%d", fixed-len(bound))
		if t.IsVariadic() {
			want = "at least " + want
		}
		return nil, &ArgumentError{
			Method: method,
			Target: target,
			Reason: fmt.Sprintf("want %s arguments, got %d", want, len(args)),
		}
	}

	in := make([]reflect.Value, 0, total)
	in = append(in, bound...)
	for i, arg := range args {
		idx := len(bound) + i
		var paramType reflect.Type
		if t.IsVariadic() && idx >= fixed {
			paramType = t.In(fixed).Elem()
		} else {
			paramType = t.In(idx)
		}
		value, err := convertArg(arg, paramType)
		if err != nil {
			return nil, &ArgumentError{Method: method, Target: target, Reason: fmt.Sprintf("argument %d: %v", i, err)}
		}
		in = append(in, value)
	}

	return splitResults(fn.Call(in))
}

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if !v.Type().ConvertibleTo(t) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", arg, t)
	}
	if v.Kind() == t.Kind() {
		return v.Convert(t), nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		converted := v.Convert(t)
		// values that overflow or lose a fraction do not round trip
		if converted.Convert(v.Type()).Interface() != v.Interface() {
			return reflect.Value{}, fmt.Errorf("%T value %v does not fit %s", arg, arg, t)
		}
		return converted, nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", arg, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// splitResults separates a trailing error result. A single remaining value is
// returned as is, several are returned as []any.
func splitResults(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if e, ok := out[n-1].Interface().(error); ok {
			err = e
		}
		out = out[:n-1]
	}
	if err != nil {
		return nil, err
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, nil
	}
}
