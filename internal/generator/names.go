package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Daniel", "Nancy", "Matthew", "Ashley",
	"Aarav", "Priya", "Rohan", "Ananya", "Lucas", "Gabriela", "Mateus", "Beatriz",
	"Liam", "Olivia", "Noah", "Chloe", "Lukas", "Hannah", "Felix", "Emma",
	"Hugo", "Camille", "Louis", "Manon", "Jack", "Isla", "Oliver", "Charlotte",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor", "Thomas", "Moore", "Martin",
	"Sharma", "Patel", "Gupta", "Singh", "Silva", "Santos", "Oliveira", "Souza",
	"Tremblay", "Roy", "Muller", "Schmidt", "Schneider", "Fischer", "Dubois", "Lefebvre",
	"Bernard", "Moreau", "Walker", "Harris", "Clarke", "Evans", "Kelly", "Murphy",
}

var emailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "protonmail.com",
	"icloud.com", "mail.com", "example.com", "example.org", "example.net",
}

func pick(r *rand.Rand, pool []string) string {
	return pool[r.IntN(len(pool))]
}

// randomIdentity returns a display name and an email made unique by the user id.
func randomIdentity(r *rand.Rand, userID int) (string, string) {
	first, last := pick(r, firstNames), pick(r, lastNames)
	email := fmt.Sprintf("%s.%s_%d@%s",
		strings.ToLower(first),
		strings.ToLower(last),
		userID,
		pick(r, emailDomains),
	)
	return first + " " + last, email
}
