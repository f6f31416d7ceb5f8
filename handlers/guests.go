package handlers

import (
	"net/http"

	"slotbook/services/guests"

	"github.com/gin-gonic/gin"
)

type validateGuestsRequest struct {
	PrimaryEmail string   `json:"primaryEmail"`
	Guests       []string `json:"guests"`
	// Index validates a single input (blur); nil validates the whole list.
	Index *int `json:"index"`
}

type validateGuestsResponse struct {
	Valid         bool     `json:"valid"`
	Inputs        []string `json:"inputs"`
	Errors        []string `json:"errors"`
	HasDuplicates bool     `json:"hasDuplicates"`
}

// ValidateGuests runs the guest email rules against the submitted inputs.
func ValidateGuests(c *gin.Context) {
	var req validateGuestsRequest
	if !bindJSON(c, &req) {
		return
	}
	list := guests.NewList(req.Guests)
	var valid bool
	if req.Index != nil {
		valid = list.ValidateAt(*req.Index, req.PrimaryEmail)
	} else {
		valid = list.ValidateAll(req.PrimaryEmail)
	}
	c.JSON(http.StatusOK, validateGuestsResponse{
		Valid:         valid,
		Inputs:        list.Inputs,
		Errors:        list.Errors,
		HasDuplicates: guests.HasDuplicateEmails(list.Inputs),
	})
}
