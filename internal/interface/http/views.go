package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nwtrack/networth-api/internal/domain/entity"
)

// userView serializes a user for API responses. The password hash is never
// part of any payload.
func userView(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"age":             u.Age,
		"ageToRetire":     u.AgeToRetire,
		"targetWorth":     u.TargetWorth,
		"worthDateTarget": u.WorthDateTarget,
		"drawDownAmount":  u.DrawDownAmount,
		"monthlyIncrease": u.MonthlyIncrease,
		"currency":        u.Currency,
		"firstTimeUser":   u.FirstTimeUser,
		"netWorth":        u.NetWorth,
		"accountList":     u.AccountList,
		"lastUpdated":     u.LastUpdated,
		"createdAt":       u.CreatedAt,
		"updatedAt":       u.UpdatedAt,
	}
}

func accountView(a *entity.Account) gin.H {
	return gin.H{
		"id":        a.ID,
		"user":      a.UserID,
		"name":      a.Name,
		"category":  a.Category,
		"balance":   a.Balance,
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}
}

// accountSummary omits the balance; the all-accounts listing is not scoped to
// an owner.
func accountSummary(a *entity.Account) gin.H {
	return gin.H{
		"id":        a.ID,
		"user":      a.UserID,
		"name":      a.Name,
		"category":  a.Category,
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}
}
