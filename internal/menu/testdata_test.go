package menu

import "swaad-chat/internal/models"

func sampleItems() []models.FoodItem {
	return []models.FoodItem{
		{
			ID: 1, Name: "Butter Chicken", Image: "butter_chicken.png",
			Description: "Tandoori chicken simmered in a creamy tomato gravy",
			Category:    "North Indian", Type: models.NonVegetarian, SpiceLevel: "Mild",
			Ingredients: []string{"Chicken", "Butter", "Tomato", "Cream"},
			Nutrition:   models.Nutrition{Calories: 490, Protein: "32g", Carbs: "14g", Fat: "34g"},
			Price:       379, Serves: 2,
		},
		{
			ID: 2, Name: "Paneer Tikka", Image: "paneer_tikka.png",
			Description: "Chargrilled cottage cheese with peppers",
			Category:    "North Indian", Type: models.Vegetarian, SpiceLevel: "Medium",
			Ingredients: []string{"Paneer", "Capsicum", "Yogurt"},
			Nutrition:   models.Nutrition{Calories: 320, Protein: "21g", Carbs: "9g", Fat: "22g"},
			Price:       299, Serves: 2,
		},
		{
			ID: 3, Name: "Masala Dosa", Image: "masala_dosa.png",
			Description: "Crisp rice crepe with spiced potato filling",
			Category:    "South Indian", Type: models.Vegetarian, SpiceLevel: "Mild",
			Ingredients: []string{"Rice", "Urad Dal", "Potato"},
			Nutrition:   models.Nutrition{Calories: 380, Protein: "8g", Carbs: "58g", Fat: "12g"},
			Price:       149, Serves: 1,
		},
		{
			ID: 4, Name: "Pani Puri", Image: "pani_puri.png",
			Description: "Hollow puris with tangy spiced water",
			Category:    "Street Food", Type: models.Vegetarian, SpiceLevel: "Hot",
			Ingredients: []string{"Semolina", "Tamarind", "Potato", "Chickpeas"},
			Nutrition:   models.Nutrition{Calories: 210, Protein: "4g", Carbs: "36g", Fat: "6g"},
			Price:       89, Serves: 1,
			SizeVariants: []models.SizeVariant{{Size: "6 pc", Price: 89}, {Size: "12 pc", Price: 159}},
		},
	}
}
