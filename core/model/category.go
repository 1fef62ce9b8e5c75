package model

// Category groups product units that share a weight range and a name pool.
type Category string

const (
	Electronics       Category = "electronics"
	Appliances        Category = "appliances"
	Furniture         Category = "furniture"
	Consoles          Category = "consoles"
	Videogames        Category = "videogames"
	GamingAccessories Category = "gaming_accessories"
	GamingHardware    Category = "gaming_hardware"
	Office            Category = "office"
	Toys              Category = "toys"
	Sports            Category = "sports"
)

// CategorySpec is the static generation table entry for a category.
type CategorySpec struct {
	Category  Category
	MinWeight float64
	MaxWeight float64
	Names     []string
}

var catalog = []CategorySpec{
	{Electronics, 0.2, 40, []string{"Laptop", "Smartphone", "Tablet", "Headphones", "Digital Camera", "Monitor", "Keyboard", "Mouse", "Printer", "Wi-Fi Router"}},
	{Appliances, 0.5, 150, []string{"Refrigerator", "Washing Machine", "Microwave", "Vacuum Cleaner", "Electric Oven", "Blender", "Coffee Maker", "Clothes Iron", "Pedestal Fan", "Air Conditioner"}},
	{Furniture, 3, 200, []string{"Three-Seat Sofa", "Dining Table", "Wooden Chair", "Double Bed", "Wardrobe", "Bookshelf", "Office Desk", "Floor Lamp", "Dresser", "Entry Bench"}},
	{Consoles, 2, 6, []string{"PlayStation 5", "Xbox Series X", "Nintendo Switch", "Steam Deck", "PlayStation 4", "Xbox Series S", "Nintendo Switch OLED", "PlayStation 5 Digital", "Retro Mini Console", "PlayStation Portal"}},
	{Videogames, 0.05, 0.2, []string{"FIFA", "Zelda", "Mario Kart", "God of War", "Call of Duty", "Elden Ring", "Minecraft", "Horizon", "Gran Turismo", "Final Fantasy"}},
	{GamingAccessories, 0.1, 1.5, []string{"Xbox Controller", "Gaming Headset", "Mechanical Keyboard", "Gaming Mouse", "Gaming Chair", "RGB Mouse Pad", "USB Microphone", "Headset Stand", "DualSense Controller", "Racing Wheel"}},
	{GamingHardware, 0.5, 10, []string{"RTX Graphics Card", "Gaming Monitor", "Modular Power Supply", "NVMe SSD", "Motherboard", "DDR5 Memory", "Liquid Cooler", "ATX Case", "RGB Fan", "Intel i9 Processor"}},
	{Office, 0.1, 5, []string{"Office Chair", "Laser Printer", "Filing Cabinet", "A4 Binder", "Desk Calculator", "Desk Organizer", "LED Lamp", "Whiteboard", "Desk Phone", "Document Holder"}},
	{Toys, 0.1, 5, []string{"Lego Classic", "Action Doll", "Kids Drone", "Stress Ball", "1000-Piece Puzzle", "RC Car", "Monopoly", "Giant Plush", "Modeling Clay Set", "Educational Robot"}},
	{Sports, 0.2, 50, []string{"Mountain Bike", "Dumbbells", "Football", "Tennis Racket", "Treadmill", "Yoga Mat", "Boxing Gloves", "Kettlebell", "Skateboard", "Basketball"}},
}

var index = func() map[Category]int {
	m := make(map[Category]int, len(catalog))
	for i, s := range catalog {
		m[s.Category] = i
	}
	return m
}()

// Categories returns every known category in table order.
func Categories() []Category {
	out := make([]Category, len(catalog))
	for i, s := range catalog {
		out[i] = s.Category
	}
	return out
}

// Spec returns the generation table entry for c.
func Spec(c Category) (CategorySpec, bool) {
	i, ok := index[c]
	if !ok {
		return CategorySpec{}, false
	}
	s := catalog[i]
	s.Names = append([]string(nil), s.Names...)
	return s, true
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := index[c]
	return ok
}

// MaxWeight is the heaviest unit the category can produce.
func (c Category) MaxWeight() float64 {
	if i, ok := index[c]; ok {
		return catalog[i].MaxWeight
	}
	return 0
}

// ParseCategory accepts the canonical lower-case name.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}
