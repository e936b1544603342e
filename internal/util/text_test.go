package util

import (
	"strings"
	"testing"
)

func TestFoldText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Token inválido", "token invalido"},
		{"SESIÓN EXPIRADA", "sesion expirada"},
		{"Cuenta inactiva", "cuenta inactiva"},
		{"No tienes permisos para realizar esta acción", "no tienes permisos para realizar esta accion"},
		{"", ""},
		{"plain ascii", "plain ascii"},
	}
	for _, tc := range cases {
		if got := FoldText(tc.in); got != tc.want {
			t.Errorf("FoldText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTempID(t *testing.T) {
	id1 := TempID()
	id2 := TempID()

	if !strings.HasPrefix(id1, "temp_") {
		t.Errorf("TempID() = %q, want temp_ prefix", id1)
	}
	if id1 == id2 {
		t.Error("consecutive TempIDs should differ")
	}
}
