package domain

import "github.com/google/uuid"

// PurchaseState is the terminal state of one purchase attempt.
type PurchaseState string

const (
	PurchaseRejected           PurchaseState = "rejected"
	PurchaseCloneFailed        PurchaseState = "clone_failed"
	PurchaseSucceeded          PurchaseState = "succeeded"
	PurchasePartiallySucceeded PurchaseState = "partially_succeeded"
)

// PurchaseStep names the step of a purchase that failed.
type PurchaseStep string

const (
	StepValidate PurchaseStep = "validate"
	StepDebit    PurchaseStep = "debit"
	StepClone    PurchaseStep = "clone"
	StepRefund   PurchaseStep = "refund"
)

type Eligibility struct {
	CanPurchase bool   `json:"can_purchase"`
	Reason      Reason `json:"reason,omitempty"`
	Cost        int    `json:"cost,omitempty"`
}

type PurchaseResult struct {
	PurchaseID   uuid.UUID     `json:"purchase_id"`
	Success      bool          `json:"success"`
	State        PurchaseState `json:"state"`
	NewMapID     *uuid.UUID    `json:"new_map_id,omitempty"`
	CostDeducted int           `json:"cost_deducted,omitempty"`
	Reason       Reason        `json:"reason,omitempty"`
	FailedStep   PurchaseStep  `json:"failed_step,omitempty"`
	Message      string        `json:"message"`
}

func DebitReference(purchaseID uuid.UUID) string {
	return "purchase:" + purchaseID.String()
}

func RefundReference(purchaseID uuid.UUID) string {
	return "refund:" + purchaseID.String()
}
