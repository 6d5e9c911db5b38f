package docstore

import (
	"reflect"
	"strings"
	"time"
)

// Value classes in Firestore's cross-type ordering. Values of different classes never
// compare equal and range filters only match within a class.
type valueClass int

const (
	classNull valueClass = iota
	classBool
	classNumber
	classTime
	classString
	classArray
	classMap
	classOther
)

func classify(v interface{}) (valueClass, interface{}) {
	switch t := v.(type) {
	case nil:
		return classNull, nil
	case bool:
		return classBool, t
	case int:
		return classNumber, float64(t)
	case int8:
		return classNumber, float64(t)
	case int16:
		return classNumber, float64(t)
	case int32:
		return classNumber, float64(t)
	case int64:
		return classNumber, float64(t)
	case uint:
		return classNumber, float64(t)
	case uint32:
		return classNumber, float64(t)
	case uint64:
		return classNumber, float64(t)
	case float32:
		return classNumber, float64(t)
	case float64:
		return classNumber, t
	case time.Time:
		return classTime, t
	case *time.Time:
		if t == nil {
			return classNull, nil
		}
		return classTime, *t
	case string:
		return classString, t
	case []interface{}:
		return classArray, t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return classArray, out
	case map[string]interface{}:
		return classMap, t
	default:
		return classOther, v
	}
}

// compareValues orders a and b the way Firestore orders mixed-type fields.
func compareValues(a, b interface{}) int {
	ca, va := classify(a)
	cb, vb := classify(b)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}

	switch ca {
	case classNull:
		return 0
	case classBool:
		x, y := va.(bool), vb.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case classNumber:
		x, y := va.(float64), vb.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case classTime:
		return va.(time.Time).Compare(vb.(time.Time))
	case classString:
		return strings.Compare(va.(string), vb.(string))
	case classArray:
		x, y := va.([]interface{}), vb.([]interface{})
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := compareValues(x[i], y[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(x) < len(y):
			return -1
		case len(x) > len(y):
			return 1
		default:
			return 0
		}
	default:
		if reflect.DeepEqual(va, vb) {
			return 0
		}
		return 1
	}
}

func valuesEqual(a, b interface{}) bool {
	ca, _ := classify(a)
	cb, _ := classify(b)
	return ca == cb && compareValues(a, b) == 0
}

// matches evaluates one filter against a document.
func matches(data map[string]interface{}, f Filter) bool {
	v, ok := lookup(data, f.Field)
	if !ok {
		return false
	}

	switch f.Op {
	case OpEqual:
		return valuesEqual(v, f.Value)
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		cv, _ := classify(v)
		cf, _ := classify(f.Value)
		if cv != cf {
			return false
		}
		c := compareValues(v, f.Value)
		switch f.Op {
		case OpLess:
			return c < 0
		case OpLessEqual:
			return c <= 0
		case OpGreater:
			return c > 0
		default:
			return c >= 0
		}
	case OpArrayContains:
		class, arr := classify(v)
		if class != classArray {
			return false
		}
		for _, item := range arr.([]interface{}) {
			if valuesEqual(item, f.Value) {
				return true
			}
		}
		return false
	case OpIn:
		candidates, _ := f.Value.([]interface{})
		for _, c := range candidates {
			if valuesEqual(v, c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// lookup resolves a dotted field path.
func lookup(data map[string]interface{}, path string) (interface{}, bool) {
	cur := interface{}(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
