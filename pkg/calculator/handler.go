package calculator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moveplan/moveplan/internal/rest"
)

type CalculationDTO struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

func HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var request CalculationDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result, err := Evaluate(request.Expression)
	if err != nil {
		message := "Invalid expression"
		if errors.Is(err, ErrDivisionByZero) {
			message = "Division by zero"
		}
		rest.WriteError(w, http.StatusUnprocessableEntity, message, err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, CalculationDTO{Expression: request.Expression, Result: result})
}
