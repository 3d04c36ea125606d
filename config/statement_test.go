package config

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Assada/ncd/process"
	"github.com/Assada/ncd/value"
)

func TestParseArgToken(t *testing.T) {
	cases := []struct {
		name string
		in   string
		e    process.ArgNode
		err  bool
	}{
		{
			"literal",
			"hello world",
			process.ArgNode{Literal: value.StringFrom("hello world")},
			false,
		},
		{
			"literal_looks_like_path",
			"/var/run/foo",
			process.ArgNode{Literal: value.StringFrom("/var/run/foo")},
			false,
		},
		{
			"var_ref_whole_value",
			"$lo",
			process.ArgNode{IsVarRef: true, Target: "lo"},
			false,
		},
		{
			"var_ref_with_path",
			"$lo.address",
			process.ArgNode{IsVarRef: true, Target: "lo", Path: "address"},
			false,
		},
		{
			"var_ref_with_dotted_path",
			"$consul_kv.value.inner",
			process.ArgNode{IsVarRef: true, Target: "consul_kv", Path: "value.inner"},
			false,
		},
		{
			"malformed_var_ref",
			"$",
			process.ArgNode{},
			true,
		},
		{
			"malformed_var_ref_leading_digit",
			"$1name",
			process.ArgNode{},
			true,
		},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("%d_%s", i, tc.name), func(t *testing.T) {
			got, err := parseArgToken(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("unexpected error state: %s", err)
			}
			if tc.err {
				return
			}
			if !reflect.DeepEqual(tc.e, got) {
				t.Errorf("\nexp: %#v\nact: %#v", tc.e, got)
			}
		})
	}
}

func TestStatementConfigToNode(t *testing.T) {
	sc := &StatementConfig{
		Name:   String("lo"),
		Module: String("net.tls_check"),
		Args:   []string{"example.com", "$other.port"},
	}

	node, err := sc.ToNode()
	if err != nil {
		t.Fatal(err)
	}

	if node.Name != "lo" || node.ModuleType != "net.tls_check" {
		t.Fatalf("unexpected node: %#v", node)
	}
	if len(node.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(node.Args))
	}
	if node.Args[0].IsVarRef || node.Args[0].Literal.Str() != "example.com" {
		t.Fatalf("arg 0 should be the literal \"example.com\": %#v", node.Args[0])
	}
	if !node.Args[1].IsVarRef || node.Args[1].Target != "other" || node.Args[1].Path != "port" {
		t.Fatalf("arg 1 should be a var ref to other.port: %#v", node.Args[1])
	}
}

func TestProcessConfigToNode(t *testing.T) {
	pc := &ProcessConfig{
		Name: String("network"),
		Statements: []*StatementConfig{
			{Name: String("lo"), Module: String("net.tls_check"), Args: []string{"example.com"}},
		},
	}

	node, err := pc.ToNode()
	if err != nil {
		t.Fatal(err)
	}
	if node.Name != "network" || len(node.Statements) != 1 {
		t.Fatalf("unexpected node: %#v", node)
	}

	bad := &ProcessConfig{
		Name: String("broken"),
		Statements: []*StatementConfig{
			{Name: String("s"), Module: String("m"), Args: []string{"$"}},
		},
	}
	if _, err := bad.ToNode(); err == nil {
		t.Fatal("expected an error converting a malformed variable reference")
	}
}
