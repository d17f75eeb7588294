package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

// Menus and prompts sent by the conversation engine.
const (
	WelcomeMessage = `🌾 Welcome to AgriConnect! 🌾

I'm your farming assistant. How can I help you today?

1️⃣ I'm a Farmer
2️⃣ I'm a Vendor

Reply with 1 or 2`

	FarmerMenuMessage = `👨‍🌾 Farmer Menu

What would you like to do?

1️⃣ Add a product to sell
2️⃣ Search for supplies to buy
3️⃣ Back to main menu

Reply with 1, 2, or 3`

	VendorMenuMessage = `🏪 Vendor Menu

What would you like to do?

1️⃣ Browse available products
2️⃣ Back to main menu

Reply with 1 or 2`

	RoleRepromptMessage        = "Please select 1 for Farmer or 2 for Vendor"
	AskProductNameMessage      = "Please enter the product name:"
	AskSupplySearchMessage     = "What supplies are you looking for? Type the name:"
	AskQuantityMessage         = "Great! Now enter the quantity available (in kg):"
	InvalidQuantityMessage     = "Please enter a valid number for quantity:"
	AskPriceMessage            = "Enter the price per kg (in rupees):"
	InvalidPriceMessage        = "Please enter a valid price:"
	AskDescriptionMessage      = "Enter a brief description of your product:"
	ProductSaveFailedMessage   = "❌ Sorry, there was an error saving your product. Please try again."
	SupplySearchFailedMessage  = "❌ Sorry, there was an error searching for supplies."
	ProductSearchFailedMessage = "❌ Sorry, there was an error fetching products."
	NoProductsMessage          = "😕 No products available at the moment."
	ReturnToMenuMessage        = "\nType \"menu\" to return to main menu"
	NotUnderstoodMessage       = "I didn't understand. Type \"hi\" to start over."
	GenericErrorMessage        = "❌ Sorry, something went wrong. Please try again."
)

// ProductSavedMessage confirms a product listing.
func ProductSavedMessage(name string) string {
	return fmt.Sprintf(`✅ Product "%s" has been successfully added to the website!

📱 Customers can now see and purchase your product online.

What would you like to do next?`, name)
}

// NoSuppliesMessage is sent instead of an empty result list.
func NoSuppliesMessage(term string) string {
	return fmt.Sprintf("😕 No supplies found matching \"%s\". Try searching with different keywords.", term)
}

// FormatSupplies renders a supply search as a numbered WhatsApp message.
func FormatSupplies(term string, supplies []models.Supply) string {
	if len(supplies) == 0 {
		return NoSuppliesMessage(term)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Found %d supplies matching \"%s\":\n\n", len(supplies), term)
	for i, s := range supplies {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
		fmt.Fprintf(&b, "💰 Price: ₹%s per %s\n", formatAmount(s.Price), s.Unit)
		fmt.Fprintf(&b, "📦 Available: %d %ss\n", s.QuantityAvailable, s.Unit)
		fmt.Fprintf(&b, "🏪 Supplier: %s\n", s.SupplierName)
		if s.Description != "" {
			fmt.Fprintf(&b, "📝 %s\n", s.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n💡 To purchase any of these items, visit our website or contact the supplier directly.")
	return b.String()
}

// FormatProducts renders the available-products listing for vendors.
func FormatProducts(products []models.Product) string {
	if len(products) == 0 {
		return NoProductsMessage
	}

	var b strings.Builder
	b.WriteString("🛒 Available Products:\n\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "💰 Price: ₹%s per %s\n", formatAmount(p.PricePerUnit), p.Unit)
		fmt.Fprintf(&b, "📦 Available: %d %s\n", p.QuantityAvailable, p.Unit)
		fmt.Fprintf(&b, "👨‍🌾 Farmer: %s\n", p.FarmerName())
		if p.Description != "" {
			fmt.Fprintf(&b, "📝 %s\n", p.Description)
		}
		if p.HarvestDate != nil {
			fmt.Fprintf(&b, "🗓️ Harvested: %s\n", p.HarvestDate.Format("02 Jan 2006"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n💡 To purchase any of these products, visit our website to complete the transaction.")
	return b.String()
}

// formatAmount prints 2.5 as "2.5" and 40 as "40".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
