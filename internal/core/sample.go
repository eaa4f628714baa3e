package core

import "github.com/tripagent/tripagent/internal/store"

func hotelDeLuxe() *store.Accommodation {
	return &store.Accommodation{Name: "Hotel de Luxe", Address: "123 Champs-Élysées, Paris"}
}

// SampleTripPlan returns a fixed three-day Paris itinerary for demos.
func SampleTripPlan() store.TripDetails {
	return store.TripDetails{
		Destination: "Paris, France",
		StartDate:   "2025-06-15",
		EndDate:     "2025-06-20",
		Tags:        []string{"romantic", "culture", "food"},
		Days: []store.DayPlan{
			{
				Title:         "Arrival and Settling In",
				Date:          "2025-06-15",
				Accommodation: hotelDeLuxe(),
				Transportation: &store.Transportation{
					Type:    "Airport Transfer",
					Details: "Private car from Charles de Gaulle Airport to hotel",
				},
				Activities: []store.Activity{
					{Name: "Check-in and Rest", Type: store.ActivityOther, Time: "3:00 PM", Location: "Hotel de Luxe"},
					{
						Name:        "Welcome Dinner",
						Type:        store.ActivityMeal,
						Time:        "7:00 PM",
						Location:    "Le Petit Bistro",
						Description: "Traditional French cuisine in a cozy setting",
					},
				},
			},
			{
				Title:         "Exploring Iconic Paris",
				Date:          "2025-06-16",
				Accommodation: hotelDeLuxe(),
				Activities: []store.Activity{
					{
						Name:        "Eiffel Tower Visit",
						Type:        store.ActivityAttraction,
						Time:        "10:00 AM",
						Duration:    "2 hours",
						Location:    "Champ de Mars, 5 Avenue Anatole France",
						Description: "Visit the iconic symbol of Paris with skip-the-line tickets",
					},
					{Name: "Lunch at Café de Paris", Type: store.ActivityMeal, Time: "1:00 PM", Location: "45 Avenue des Champs-Élysées"},
					{
						Name:        "Louvre Museum",
						Type:        store.ActivityAttraction,
						Time:        "3:00 PM",
						Duration:    "3 hours",
						Location:    "Rue de Rivoli, 75001 Paris",
						Description: "Explore one of the world's largest art museums",
					},
				},
			},
			{
				Title:         "Day Trip to Versailles",
				Date:          "2025-06-17",
				Accommodation: hotelDeLuxe(),
				Transportation: &store.Transportation{
					Type:    "Train",
					Details: "RER C from Paris to Versailles",
				},
				Activities: []store.Activity{
					{
						Name:        "Palace of Versailles",
						Type:        store.ActivityAttraction,
						Time:        "10:00 AM",
						Duration:    "4 hours",
						Location:    "Place d'Armes, 78000 Versailles",
						Description: "Tour the magnificent palace and gardens",
					},
					{Name: "Lunch at La Flottille", Type: store.ActivityMeal, Time: "2:00 PM", Location: "Gardens of Versailles"},
					{Name: "Return to Paris", Type: store.ActivityOther, Time: "5:00 PM"},
				},
			},
		},
	}
}
