package types

// SignUpRequest represents the request body for email sign-up
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

// SignInRequest represents the request body for email sign-in
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleSignInRequest carries a Google ID token obtained by the client
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// AddMealItemRequest represents the request body for adding food to a meal slot
type AddMealItemRequest struct {
	MealType string `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack"`
	FoodID   string `json:"food_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	// Date switches the store's current date before adding when set.
	Date string `json:"date"`
}

// UpdateMealItemRequest represents the request body for changing an item's quantity
type UpdateMealItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}
