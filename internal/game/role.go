package game

type Team string

const (
	TeamVampire Team = "vampire"
	TeamVillage Team = "village"
	TeamNeutral Team = "neutral"
)

type Role string

const (
	RoleVampire     Role = "vampire"
	RoleVillager    Role = "villager"
	RoleDoctor      Role = "doctor"
	RoleSeer        Role = "seer"
	RoleEscort      Role = "escort"
	RoleJester      Role = "jester"
	RoleGraveRobber Role = "grave_robber"
	RoleMedium      Role = "medium"
	RoleAvenger     Role = "avenger"
)

type RoleInfo struct {
	Name        string
	Description string
	Emoji       string
	Team        Team
}

// Catalog is the closed set of playable roles. Role behavior elsewhere
// branches on the Role constants, never on display strings.
var Catalog = map[Role]RoleInfo{
	RoleVampire: {
		Name:        "Vampire",
		Description: "Hunt villagers at night. You can see the other vampires.",
		Emoji:       "🧛",
		Team:        TeamVampire,
	},
	RoleVillager: {
		Name:        "Villager",
		Description: "Find the vampires and vote them out during the day.",
		Emoji:       "👨‍🌾",
		Team:        TeamVillage,
	},
	RoleDoctor: {
		Name:        "Doctor",
		Description: "Protect one person from the vampires each night.",
		Emoji:       "🧑‍⚕️",
		Team:        TeamVillage,
	},
	RoleSeer: {
		Name:        "Seer",
		Description: "Inspect one person each night to learn if they are a vampire.",
		Emoji:       "🔮",
		Team:        TeamVillage,
	},
	RoleEscort: {
		Name:        "Escort",
		Description: "Visit someone at night, or stay home. Visiting a victim is deadly.",
		Emoji:       "💃",
		Team:        TeamVillage,
	},
	RoleJester: {
		Name:        "Jester",
		Description: "Win alone by getting yourself voted out.",
		Emoji:       "🃏",
		Team:        TeamNeutral,
	},
	RoleGraveRobber: {
		Name:        "Grave Robber",
		Description: "Lock onto someone the first night. When they die you take their role.",
		Emoji:       "⚰️",
		Team:        TeamVillage,
	},
	RoleMedium: {
		Name:        "Medium",
		Description: "Once per game, bring a dead player back to life.",
		Emoji:       "🕯️",
		Team:        TeamVillage,
	},
	RoleAvenger: {
		Name:        "Avenger",
		Description: "Mark someone each night. If you die, your mark dies with you.",
		Emoji:       "🏹",
		Team:        TeamVillage,
	},
}

// AssignOrder is the priority in which configured special-role counts
// consume seats at game start. Villagers absorb any remaining seats.
var AssignOrder = []Role{
	RoleVampire,
	RoleDoctor,
	RoleSeer,
	RoleJester,
	RoleEscort,
	RoleGraveRobber,
	RoleMedium,
	RoleAvenger,
}

func (r Role) Info() RoleInfo { return Catalog[r] }

func (r Role) Valid() bool {
	_, ok := Catalog[r]
	return ok
}

func (r Role) IsVampire() bool { return Catalog[r].Team == TeamVampire }

// DefaultCounts returns the stock role distribution for a given player
// count, used for any role the host left unconfigured.
func DefaultCounts(players int) map[Role]int {
	counts := map[Role]int{}
	switch {
	case players >= 10:
		counts[RoleVampire] = 3
	case players >= 7:
		counts[RoleVampire] = 2
	default:
		counts[RoleVampire] = 1
	}
	if players >= 5 {
		counts[RoleDoctor] = 1
	}
	if players >= 12 {
		counts[RoleDoctor] = 2
	}
	if players >= 6 {
		counts[RoleSeer] = 1
	}
	return counts
}
