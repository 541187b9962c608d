package model

// FranchiseAdmin is the public view of a user administering a franchise.
type FranchiseAdmin struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store belongs to exactly one franchise. TotalRevenue is only populated for admin views.
type Store struct {
	ID           int      `json:"id"`
	FranchiseID  int      `json:"franchiseId,omitempty"`
	Name         string   `json:"name"`
	TotalRevenue *float64 `json:"totalRevenue,omitempty"`
}

type Franchise struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins,omitempty"`
	Stores []Store          `json:"stores"`
}

// AdminRef names an existing user by email.
type AdminRef struct {
	Email string `json:"email" binding:"required"`
}

type CreateFranchiseRequest struct {
	Name   string     `json:"name" binding:"required"`
	Admins []AdminRef `json:"admins" binding:"dive"`
}

type CreateStoreRequest struct {
	Name string `json:"name" binding:"required"`
}
