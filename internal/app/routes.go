package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Authentication
	r.HandleFunc("/api/auth/signup", deps.UserHandler.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/signin", deps.UserHandler.SignIn).Methods("POST")
	r.HandleFunc("/api/auth/signout", deps.UserHandler.SignOut).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")

	// Categories
	r.HandleFunc("/api/category", deps.CategoryHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.Create).Methods("POST")
	r.HandleFunc("/api/category/{id}", deps.CategoryHandler.Update).Methods("PUT")
	r.HandleFunc("/api/category/{id}", deps.CategoryHandler.Delete).Methods("DELETE")

	// Transactions
	r.HandleFunc("/api/transaction", deps.TransactionHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.Create).Methods("POST")
	r.HandleFunc("/api/transaction/{id}", deps.TransactionHandler.Update).Methods("PUT")
	r.HandleFunc("/api/transaction/{id}", deps.TransactionHandler.Delete).Methods("DELETE")

	// Budgets
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Create).Methods("POST")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/budget/{id}/consumption", deps.ReportHandler.BudgetConsumption).Methods("GET")

	// Savings goals
	r.HandleFunc("/api/goal", deps.GoalHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/goal", deps.GoalHandler.Create).Methods("POST")
	r.HandleFunc("/api/goal/{id}", deps.GoalHandler.Update).Methods("PUT")
	r.HandleFunc("/api/goal/{id}", deps.GoalHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/goal/{id}/funds", deps.GoalHandler.AddFunds).Methods("POST")

	// Reports
	r.HandleFunc("/api/report/overview", deps.ReportHandler.Overview).Methods("GET")
	r.HandleFunc("/api/report/breakdown", deps.ReportHandler.Breakdown).Methods("GET")
	r.HandleFunc("/api/report/monthly", deps.ReportHandler.Monthly).Methods("GET")
	r.HandleFunc("/api/report/monthly.csv", deps.ReportHandler.MonthlyCsv).Methods("GET")
}
