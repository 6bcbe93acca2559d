package seed

var descriptors = []string{
	"Forest", "Ancient", "Petrified", "Roaring", "Cascade", "Tumbling",
	"Silent", "Redwood", "Bullfrog", "Maple", "Misty", "Elk", "Grizzly",
	"Ocean", "Sea", "Sky", "Dusty", "Diamond",
}

var places = []string{
	"Flats", "Village", "Canyon", "Pond", "Group Camp", "Horse Camp",
	"Ghost Town", "Camp", "Dispersed Camp", "Backcountry", "River", "Creek",
	"Creekside", "Bay", "Spring", "Bayou", "Falls", "Hollow", "Ridge",
}

type city struct {
	City  string
	State string
}

var cities = []city{
	{"New York", "New York"}, {"Los Angeles", "California"}, {"Chicago", "Illinois"},
	{"Houston", "Texas"}, {"Philadelphia", "Pennsylvania"}, {"Phoenix", "Arizona"},
	{"San Antonio", "Texas"}, {"San Diego", "California"}, {"Dallas", "Texas"},
	{"San Jose", "California"}, {"Austin", "Texas"}, {"Indianapolis", "Indiana"},
	{"Jacksonville", "Florida"}, {"San Francisco", "California"}, {"Columbus", "Ohio"},
	{"Charlotte", "North Carolina"}, {"Fort Worth", "Texas"}, {"Detroit", "Michigan"},
	{"El Paso", "Texas"}, {"Memphis", "Tennessee"}, {"Seattle", "Washington"},
	{"Denver", "Colorado"}, {"Washington", "District of Columbia"}, {"Boston", "Massachusetts"},
	{"Nashville", "Tennessee"}, {"Baltimore", "Maryland"}, {"Oklahoma City", "Oklahoma"},
	{"Louisville", "Kentucky"}, {"Portland", "Oregon"}, {"Las Vegas", "Nevada"},
	{"Milwaukee", "Wisconsin"}, {"Albuquerque", "New Mexico"}, {"Tucson", "Arizona"},
	{"Fresno", "California"}, {"Sacramento", "California"}, {"Mesa", "Arizona"},
	{"Kansas City", "Missouri"}, {"Atlanta", "Georgia"}, {"Omaha", "Nebraska"},
	{"Colorado Springs", "Colorado"}, {"Raleigh", "North Carolina"}, {"Miami", "Florida"},
	{"Minneapolis", "Minnesota"}, {"Tulsa", "Oklahoma"}, {"Cleveland", "Ohio"},
	{"Wichita", "Kansas"}, {"Boulder", "Colorado"}, {"Flagstaff", "Arizona"},
	{"Bend", "Oregon"}, {"Missoula", "Montana"},
}
