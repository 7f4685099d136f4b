package cflat

import "testing"

func TestOps_IntegerArithmetic(t *testing.T) {
	env := NewEnvironment()
	if !env.Load("main", "int a = 7; int b = 2; int sum = a + b; int diff = a - b; int prod = a * b; int quot = a / b; int rem = a % b;") {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	cases := map[string]int64{"sum": 9, "diff": 5, "prod": 14, "quot": 3, "rem": 1}
	for name, want := range cases {
		v, ok := env.GetVariable(name)
		if !ok || v.AsInt64() != want {
			t.Errorf("%s = %v (ok=%v), want %d", name, v, ok, want)
		}
	}
}

func TestOps_DecimalArithmetic(t *testing.T) {
	env := NewEnvironment()
	if !env.Load("main", "double a = 7.5; double b = 2.5; double sum = a + b; double quot = a / b;") {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	sum, _ := env.GetVariable("sum")
	quot, _ := env.GetVariable("quot")
	if sum.AsFloat64() != 10.0 {
		t.Errorf("sum = %v, want 10.0", sum.AsFloat64())
	}
	if quot.AsFloat64() != 3.0 {
		t.Errorf("quot = %v, want 3.0", quot.AsFloat64())
	}
}

func TestOps_IntegerDivisionByZeroIsRuntimeError(t *testing.T) {
	env := NewEnvironment()
	ok := env.Load("main", "int a = 5; int b = 0; int c = a % b;")
	if ok {
		t.Fatalf("expected a runtime error for modulo by zero")
	}
	want := "[Runtime Error] Line 1: division by zero"
	if got := env.GetErrorMessage(); got != want {
		t.Fatalf("GetErrorMessage() = %q, want %q", got, want)
	}
}

func TestOps_DecimalDivisionNearZeroThresholdErrors(t *testing.T) {
	env := NewEnvironment()
	ok := env.Load("main", "double a = 1.0; double b = 0.0000000001; double c = a / b;")
	if ok {
		t.Fatalf("expected a runtime error: divisor is within the decimal-zero threshold")
	}
	want := "[Runtime Error] Line 1: division by zero"
	if got := env.GetErrorMessage(); got != want {
		t.Fatalf("GetErrorMessage() = %q, want %q", got, want)
	}
}

func TestOps_Comparisons(t *testing.T) {
	env := NewEnvironment()
	src := `
bool lt = 1 < 2;
bool eq = 2 == 2;
bool ne = 2 != 3;
bool ge = 3 >= 3;
`
	if !env.Load("main", src) {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	for _, name := range []string{"lt", "eq", "ne", "ge"} {
		v, ok := env.GetVariable(name)
		if !ok || !v.AsBool() {
			t.Errorf("%s = %v (ok=%v), want true", name, v, ok)
		}
	}
}

func TestOps_LogicalAndOr(t *testing.T) {
	env := NewEnvironment()
	src := `
bool a = true && false;
bool b = true || false;
`
	if !env.Load("main", src) {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	a, _ := env.GetVariable("a")
	b, _ := env.GetVariable("b")
	if a.AsBool() {
		t.Errorf("a = true, want false")
	}
	if !b.AsBool() {
		t.Errorf("b = false, want true")
	}
}

func TestOps_UnaryOperators(t *testing.T) {
	env := NewEnvironment()
	src := `
int n = 5;
int neg = -n;
bool flag = true;
bool notFlag = !flag;
int mask = 0;
int comp = ~mask;
`
	if !env.Load("main", src) {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	neg, _ := env.GetVariable("neg")
	notFlag, _ := env.GetVariable("notFlag")
	comp, _ := env.GetVariable("comp")
	if neg.AsInt64() != -5 {
		t.Errorf("neg = %d, want -5", neg.AsInt64())
	}
	if notFlag.AsBool() {
		t.Errorf("notFlag = true, want false")
	}
	if comp.AsInt64() != -1 {
		t.Errorf("comp = %d, want -1 (bitwise complement of 0)", comp.AsInt64())
	}
}

func TestOps_SizeOfTypeAndExpression(t *testing.T) {
	env := NewEnvironment()
	if !env.Load("main", "size_t a = sizeof(int); int x = 0; size_t b = sizeof(x); size_t c = sizeof(double);") {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	a, _ := env.GetVariable("a")
	b, _ := env.GetVariable("b")
	c, _ := env.GetVariable("c")
	if a.AsInt64() != 4 {
		t.Errorf("sizeof(int) = %d, want 4", a.AsInt64())
	}
	if b.AsInt64() != 4 {
		t.Errorf("sizeof(x) = %d, want 4", b.AsInt64())
	}
	if c.AsInt64() != 8 {
		t.Errorf("sizeof(double) = %d, want 8", c.AsInt64())
	}
}

func TestOps_NewAllocatesAndRunsConstructor(t *testing.T) {
	env := NewEnvironment()
	counter := NewStructType("Counter")
	intUsage := TypeUsage{Type: env.GetType("int")}
	counter.AddMember("value", intUsage, 0, VisibilityPublic)
	counter.AddMethod("Counter", TypeUsage{}, []TypeUsage{intUsage}, VisibilityPublic, func(this Value, args []Value, out *Value) {
		member := this.Dereference(TypeUsage{Type: counter})
		field := member.Buffer[0:4]
		copy(field, args[0].Buffer[0:4])
	})
	env.RegisterType(counter)

	if !env.Load("main", "Counter* c = new Counter(9);") {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	cv, ok := env.GetVariable("c")
	if !ok {
		t.Fatalf("'c' not found")
	}
	if cv.IsNullPointer() {
		t.Fatalf("new Counter(9) produced a null pointer")
	}
}

func TestOps_DeleteRemovesFromHeapRegistry(t *testing.T) {
	env := NewEnvironment()
	point := NewStructType("Point")
	point.AddMethod("Point", TypeUsage{}, nil, VisibilityPublic, func(this Value, args []Value, out *Value) {})
	env.RegisterType(point)

	if !env.Load("main", "Point* p = new Point(); delete p;") {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	if len(env.heapObjects) != 0 {
		t.Fatalf("heapObjects still holds %d entries after delete", len(env.heapObjects))
	}
}

func TestOps_ArrayIndexOutOfBoundsIsRuntimeError(t *testing.T) {
	env := NewEnvironment()
	ok := env.Load("main", "int arr[3]; int v = arr[5];")
	if ok {
		t.Fatalf("expected a runtime error for an out-of-bounds array index")
	}
	want := "[Runtime Error] Line 1: invalid array index (5)"
	if got := env.GetErrorMessage(); got != want {
		t.Fatalf("GetErrorMessage() = %q, want %q", got, want)
	}
}

func TestOps_ArrayIndexInBoundsReadsElement(t *testing.T) {
	env := NewEnvironment()
	if !env.Load("main", "int arr[3]; arr[1] = 42; int v = arr[1];") {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	v, ok := env.GetVariable("v")
	if !ok || v.AsInt64() != 42 {
		t.Fatalf("v = %v (ok=%v), want 42", v, ok)
	}
}

func TestOps_UserDefinedOperatorDispatch(t *testing.T) {
	env := NewEnvironment()
	vec := NewStructType("Vec1")
	intUsage := TypeUsage{Type: env.GetType("int")}
	vec.AddMember("v", intUsage, 0, VisibilityPublic)
	vec.AddMethod("Vec1", TypeUsage{}, nil, VisibilityPublic, func(this Value, args []Value, out *Value) {})
	vec.AddMethod("operator+", TypeUsage{Type: vec}, []TypeUsage{{Type: vec}}, VisibilityPublic, func(this Value, args []Value, out *Value) {
		a := this.Dereference(TypeUsage{Type: vec})
		left := Value{Usage: intUsage, Buffer: a.Buffer[0:4]}
		right := Value{Usage: intUsage, Buffer: args[0].Buffer[0:4]}
		result := Value{Usage: intUsage, Buffer: out.Buffer[0:4]}
		result.SetInt64(left.AsInt64() + right.AsInt64())
	})
	env.RegisterType(vec)

	src := `
Vec1 v1;
Vec1 v2;
v1.v = 3;
v2.v = 4;
Vec1 v3 = v1 + v2;
int sum = v3.v;
`
	if !env.Load("main", src) {
		t.Fatalf("Load failed: %s", env.GetErrorMessage())
	}
	sum, ok := env.GetVariable("sum")
	if !ok || sum.AsInt64() != 7 {
		t.Fatalf("sum = %v (ok=%v), want 7", sum, ok)
	}
}
