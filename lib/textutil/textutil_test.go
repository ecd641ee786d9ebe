package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseSpace(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "  학과명 ", expected: "학과명"},
		{input: "사용자\n\t 상태", expected: "사용자 상태"},
		{input: " 재학 ", expected: "재학"},
		{input: "", expected: ""},
		{input: " \n ", expected: ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, CollapseSpace(test.input))
	}
}

func TestFirstNonBlank(t *testing.T) {
	require.Equal(t, "컴퓨터공학과", FirstNonBlank("", "  ", "컴퓨터공학과", "소프트웨어학과"))
	require.Equal(t, "", FirstNonBlank("", " "))
	require.Equal(t, "", FirstNonBlank())
}

func TestJoinNonBlank(t *testing.T) {
	cases := []struct {
		input    []string
		expected string
	}{
		{input: []string{"010", "1234", "5678"}, expected: "010-1234-5678"},
		{input: []string{"010", "", ""}, expected: "010"},
		{input: []string{"", "1234", ""}, expected: "1234"},
		{input: []string{"010", "", "5678"}, expected: "010-5678"},
		{input: []string{"", "", ""}, expected: ""},
		{input: []string{" 010 ", "1234", " "}, expected: "010-1234"},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, JoinNonBlank("-", test.input...))
	}
}
