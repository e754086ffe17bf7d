package transformers

var DefaultFirstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Lisa", "Daniel", "Nancy",
	"Matthew", "Betty", "Anthony", "Sandra", "Mark", "Margaret", "Donald", "Ashley",
	"Steven", "Kimberly", "Andrew", "Emily", "Paul", "Donna", "Joshua", "Michelle",
	"Kenneth", "Carol", "Kevin", "Amanda", "Brian", "Melissa", "George", "Deborah",
	"Timothy", "Stephanie", "Ronald", "Rebecca", "Jason", "Sharon", "Edward", "Laura",
	"Jeffrey", "Cynthia", "Ryan", "Dorothy", "Jacob", "Amy", "Gary", "Kathleen",
	"Nicholas", "Angela", "Eric", "Shirley", "Jonathan", "Anna", "Stephen", "Brenda",
	"Larry", "Pamela", "Justin", "Emma", "Scott", "Nicole", "Brandon", "Helen",
	"Benjamin", "Samantha", "Samuel", "Katherine", "Gregory", "Christine", "Alexander", "Debra",
	"Patrick", "Rachel", "Frank", "Carolyn", "Raymond", "Janet", "Jack", "Maria",
	"Dennis", "Olivia", "Jerry", "Heather", "Tyler", "Diane", "Aaron", "Julie",
	"Jose", "Joyce", "Adam", "Victoria", "Nathan", "Ruth", "Henry", "Virginia",
	"Zachary", "Lauren", "Douglas", "Kelly", "Peter", "Christina", "Kyle", "Joan",
	"Noah", "Evelyn", "Ethan", "Judith", "Jeremy", "Andrea", "Walter", "Hannah",
	"Christian", "Megan", "Keith", "Cheryl", "Roger", "Jacqueline", "Terry", "Martha",
	"Austin", "Madison", "Sean", "Teresa", "Gerald", "Gloria", "Carl", "Sara",
	"Harold", "Janice", "Dylan", "Ann", "Arthur", "Kathryn", "Lawrence", "Abigail",
	"Jordan", "Sophia", "Jesse", "Frances", "Bryan", "Jean", "Billy", "Alice",
}

var DefaultLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
	"Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	"Carter", "Roberts", "Gomez", "Phillips", "Evans", "Turner", "Diaz", "Parker",
	"Cruz", "Edwards", "Collins", "Reyes", "Stewart", "Morris", "Morales", "Murphy",
	"Cook", "Rogers", "Gutierrez", "Ortiz", "Morgan", "Cooper", "Peterson", "Bailey",
	"Reed", "Kelly", "Howard", "Ramos", "Kim", "Cox", "Ward", "Richardson",
	"Watson", "Brooks", "Chavez", "Wood", "James", "Bennett", "Gray", "Mendoza",
	"Ruiz", "Hughes", "Price", "Alvarez", "Castillo", "Sanders", "Patel", "Myers",
	"Long", "Ross", "Foster", "Jimenez", "Powell", "Jenkins", "Perry", "Russell",
	"Sullivan", "Bell", "Coleman", "Butler", "Henderson", "Barnes", "Gonzales", "Fisher",
	"Vasquez", "Simmons", "Romero", "Jordan", "Patterson", "Alexander", "Hamilton", "Graham",
	"Reynolds", "Griffin", "Wallace", "Moreno", "West", "Cole", "Hayes", "Bryant",
	"Herrera", "Gibson", "Ellis", "Tran", "Medina", "Aguilar", "Stevens", "Murray",
	"Ford", "Castro", "Marshall", "Owens", "Harrison", "Fernandez", "McDonald", "Woods",
	"Washington", "Kennedy", "Wells", "Vargas", "Henry", "Chen", "Freeman", "Webb",
	"Tucker", "Guzman", "Burns", "Crawford", "Olson", "Simpson", "Porter", "Hunter",
}

func generateFirstName(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	return fitLength(r.pick(DefaultFirstNames), req.MaxLength), nil
}

func generateLastName(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	return fitLength(r.pick(DefaultLastNames), req.MaxLength), nil
}

// generateFullName seeds the last name with the chosen first name, so the pair
// is reproducible as a whole while distinct originals diverge on both parts.
func generateFullName(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	first := r.pick(DefaultFirstNames)

	sub, err := req.SubRand(first)
	if err != nil {
		return "", err
	}
	last := sub.pick(DefaultLastNames)

	full := first + " " + last
	if req.MaxLength > 0 && len(full) > req.MaxLength {
		// degrade: initial + last, then truncate
		full = first[:1] + ". " + last
	}
	return fitLength(full, req.MaxLength), nil
}

func init() {
	register("FirstName", &Definition{
		Generate:    generateFirstName,
		CachePolicy: CacheAlways,
		Description: "Replaces a first name with a deterministic substitute.",
	})
	register("LastName", &Definition{
		Generate:    generateLastName,
		CachePolicy: CacheAlways,
		Description: "Replaces a last name with a deterministic substitute.",
	})
	register("FullName", &Definition{
		Generate:    generateFullName,
		CachePolicy: CacheDefault,
		Description: "Replaces a full name, seeding the last name with the chosen first name.",
	})
}
