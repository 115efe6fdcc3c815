package cqrs

// ---------- User queries ----------

// ShowUserProfileQuery fetches the profile of the authenticated user.
type ShowUserProfileQuery struct {
	UserID string
}

// ---------- Statement queries ----------

// GetBalanceQuery fetches the balance and full history of a user.
type GetBalanceQuery struct {
	UserID string
}

// GetStatementOperationQuery fetches a single statement owned by UserID.
type GetStatementOperationQuery struct {
	UserID      string
	StatementID string
}
