package host_test

import (
	"testing"

	"futprint/internal/host"
	"futprint/internal/host/hosttest"
)

func TestUnderlyingTypeName(t *testing.T) {
	outer := hosttest.Struct("futures::detail::future_state<int,op>", 24, 8)
	alias := hosttest.Typedef("my_future_t", outer)
	cref := hosttest.Const(alias).Reference()
	integer := hosttest.Scalar("int", host.CodeInt, 4)

	cases := []struct {
		name string
		t    host.Type
		want string
	}{
		{"struct", outer, outer.Name()},
		{"typedef", alias, outer.Name()},
		{"const reference to typedef", cref, outer.Name()},
		{"no tag falls back to declared name", integer, "int"},
		{"typedef to scalar", hosttest.Typedef("size_type", integer), "size_type"},
	}
	for _, tc := range cases {
		v := hosttest.NewValue(tc.t, 0x1000)
		if got := host.UnderlyingTypeName(v); got != tc.want {
			t.Fatalf("%s: UnderlyingTypeName = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestAddressString(t *testing.T) {
	if got := host.Address(0x7ffd1000).String(); got != "0x000000007ffd1000" {
		t.Fatalf("Address.String() = %q", got)
	}
}
