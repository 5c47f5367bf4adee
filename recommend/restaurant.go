package recommend

// Restaurant is one candidate venue in the in-memory dataset.
type Restaurant struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Location   string   `json:"location,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Price      string   `json:"price,omitempty"` // tier: "$" .. "$$$$"
	Highlights []string `json:"highlights,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Reference  string   `json:"reference,omitempty"`
}

// priceTiers maps a price tier symbol to an estimated per-person spend in SGD.
var priceTiers = map[string]int{
	"$":    20,
	"$$":   40,
	"$$$":  80,
	"$$$$": 150,
}

// PriceEstimate returns the estimated per-person spend for a price tier,
// or 0 when the tier is unknown.
func PriceEstimate(tier string) int {
	return priceTiers[tier]
}

// DefaultRestaurants returns the built-in Singapore sample dataset used when
// no external candidate source is wired in.
func DefaultRestaurants() []Restaurant {
	return []Restaurant{
		{
			ID: "1", Name: "Din Tai Fung", Cuisine: "Taiwanese", Location: "Orchard",
			Rating: 4.2, Price: "$$",
			Highlights: []string{"Xiao Long Bao", "Noodles", "Family-friendly"},
			Reason:     "Perfect for family dining with authentic Taiwanese cuisine and famous soup dumplings",
			Reference:  "https://www.dintaifung.com.sg",
		},
		{
			ID: "2", Name: "Burnt Ends", Cuisine: "Modern Australian", Location: "Tanjong Pagar",
			Rating: 4.5, Price: "$$$$",
			Highlights: []string{"BBQ", "Wine", "Date Night"},
			Reason:     "Exceptional BBQ and wine selection, perfect for special occasions",
			Reference:  "https://www.burntends.com.sg",
		},
		{
			ID: "3", Name: "Hawker Chan", Cuisine: "Singaporean", Location: "Chinatown",
			Rating: 3.8, Price: "$",
			Highlights: []string{"Michelin Star", "Soya Sauce Chicken", "Affordable"},
			Reason:     "Michelin-starred hawker food at unbeatable prices",
			Reference:  "https://www.hawkerchan.com",
		},
		{
			ID: "4", Name: "Odette", Cuisine: "French", Location: "Marina Bay",
			Rating: 4.8, Price: "$$$$",
			Highlights: []string{"Fine Dining", "3 Michelin Stars", "Romantic"},
			Reason:     "World-class French cuisine with impeccable service and atmosphere",
			Reference:  "https://www.odetterestaurant.com",
		},
		{
			ID: "5", Name: "Jumbo Seafood", Cuisine: "Chinese", Location: "Clarke Quay",
			Rating: 4.1, Price: "$$$",
			Highlights: []string{"Chilli Crab", "Seafood", "Waterfront"},
			Reason:     "Famous for Singapore's signature chilli crab with beautiful river views",
			Reference:  "https://www.jumboseafood.com.sg",
		},
		{
			ID: "6", Name: "Lau Pa Sat", Cuisine: "Mixed Hawker", Location: "Marina Bay",
			Rating: 3.9, Price: "$",
			Highlights: []string{"Satay", "Local Food", "Historic"},
			Reason:     "Historic hawker center with diverse local food options",
			Reference:  "https://www.laupasat.com.sg",
		},
		{
			ID: "7", Name: "Candlenut", Cuisine: "Peranakan", Location: "Tanjong Pagar",
			Rating: 4.3, Price: "$$$",
			Highlights: []string{"Peranakan", "Heritage", "Unique"},
			Reason:     "Award-winning Peranakan cuisine in a modern setting",
			Reference:  "https://www.candlenut.com.sg",
		},
		{
			ID: "8", Name: "Tippling Club", Cuisine: "Modern European", Location: "Tanjong Pagar",
			Rating: 4.4, Price: "$$$$",
			Highlights: []string{"Cocktails", "Innovative", "Trendy"},
			Reason:     "Creative cocktails and innovative dishes in a trendy atmosphere",
			Reference:  "https://www.tipplingclub.com",
		},
	}
}
