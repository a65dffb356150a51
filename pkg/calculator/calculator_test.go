package calculator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	cases := map[string]float64{
		"1 + 2":           3,
		"2 * (3 + 4)":     14,
		"10 / 4":          2.5,
		"-5 + +2":         -3,
		"1500 × 3 ÷ 2":    2250,
		"0.1 * 10":        1,
		"((2))":           2,
		"100 - 2 * 3 - 4": 90,
	}
	for expression, expected := range cases {
		t.Run(expression, func(t *testing.T) {
			result, err := Evaluate(expression)
			require.NoError(t, err)
			assert.InDelta(t, expected, result, 1e-9)
		})
	}
}

func TestEvaluate_Rejects(t *testing.T) {
	for _, expression := range []string{
		"2 ** 3",
		"2 ^ 3",
		"7 % 2",
		"x + 1",
		"len('abc')",
		"'a' + 'b'",
		"1 < 2",
		"!true",
		"[1, 2]",
		"",
		"2 +",
	} {
		t.Run(expression, func(t *testing.T) {
			_, err := Evaluate(expression)
			assert.ErrorIs(t, err, ErrInvalidExpression)
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	_, err := Evaluate("5 / 0")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Evaluate("0 / 0")
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestHandleCalculate(t *testing.T) {
	t.Run("should return result", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleCalculate(rr, httptest.NewRequest(http.MethodPost, "/api/calculator", strings.NewReader(`{"expression":"2 * 21"}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"expression":"2 * 21","result":42}`, rr.Body.String())
	})

	t.Run("should reject code", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleCalculate(rr, httptest.NewRequest(http.MethodPost, "/api/calculator", strings.NewReader(`{"expression":"env()"}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleCalculate(rr, httptest.NewRequest(http.MethodPost, "/api/calculator", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
