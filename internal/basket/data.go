package basket

// Basket composition based on BLS relative-importance data (December 2023).
// Leading item per category is the broad index for that group; the items that
// follow are its main components.

// volatilityDrivers are included in Primary() on top of the category leads.
var volatilityDrivers = []string{
	"CUSR0000SETB01", // Motor Fuel (Gasoline)
	"CUSR0000SAH2",   // Fuels and Utilities
}

func defaultItems() []Item {
	return []Item{
		//apparel (~2.5%)
		{Name: "Apparel", SeriesID: "CUSR0000SAA", Weight: 2.47, Category: "Apparel", Subcategory: "All Apparel", Description: "Men's, women's, children's clothing and footwear", UpdateFrequency: "monthly"},
		{Name: "Men's Apparel", SeriesID: "CUSR0000SAA1", Weight: 0.66, Category: "Apparel", Subcategory: "Men's Apparel", UpdateFrequency: "monthly"},
		{Name: "Women's Apparel", SeriesID: "CUSR0000SAA2", Weight: 1.16, Category: "Apparel", Subcategory: "Women's Apparel", UpdateFrequency: "monthly"},
		{Name: "Footwear", SeriesID: "CUSR0000SEAE", Weight: 0.62, Category: "Apparel", Subcategory: "Footwear", UpdateFrequency: "monthly"},

		// food and beverages (~13.5%)
		{Name: "Food at Home", SeriesID: "CUSR0000SAF11", Weight: 8.17, Category: "Food and Beverages", Subcategory: "Food at Home", Description: "Food purchased for off-premises consumption", UpdateFrequency: "monthly"},
		{Name: "Food Away from Home", SeriesID: "CUSR0000SEFV", Weight: 5.36, Category: "Food and Beverages", Subcategory: "Food Away from Home", UpdateFrequency: "monthly"},
		{Name: "Alcoholic Beverages", SeriesID: "CUSR0000SAF116", Weight: 0.89, Category: "Food and Beverages", Subcategory: "Alcoholic Beverages", UpdateFrequency: "monthly"},
		{Name: "Cereals and Bakery Products", SeriesID: "CUSR0000SAF111", Weight: 1.05, Category: "Food and Beverages", Subcategory: "Food at Home - Cereals and Bakery", UpdateFrequency: "monthly"},
		{Name: "Meats, Poultry, Fish, and Eggs", SeriesID: "CUSR0000SAF112", Weight: 1.86, Category: "Food and Beverages", Subcategory: "Food at Home - Meats", UpdateFrequency: "monthly"},
		{Name: "Dairy and Related Products", SeriesID: "CUSR0000SEFJ", Weight: 0.86, Category: "Food and Beverages", Subcategory: "Food at Home - Dairy", UpdateFrequency: "monthly"},
		{Name: "Fruits and Vegetables", SeriesID: "CUSR0000SAF113", Weight: 1.26, Category: "Food and Beverages", Subcategory: "Food at Home - Fruits and Vegetables", UpdateFrequency: "monthly"},

		// housing (~44.4%), the largest category
		{Name: "Shelter", SeriesID: "CUSR0000SAH1", Weight: 36.17, Category: "Housing", Subcategory: "Shelter", Description: "Rent of primary residence and owners' equivalent rent", UpdateFrequency: "monthly"},
		{Name: "Rent of Primary Residence", SeriesID: "CUSR0000SEHA", Weight: 7.69, Category: "Housing", Subcategory: "Shelter - Rent", UpdateFrequency: "monthly"},
		{Name: "Owners' Equivalent Rent", SeriesID: "CUSR0000SEHC", Weight: 26.68, Category: "Housing", Subcategory: "Shelter - OER", UpdateFrequency: "monthly"},
		{Name: "Fuels and Utilities", SeriesID: "CUSR0000SAH2", Weight: 4.06, Category: "Housing", Subcategory: "Fuels and Utilities", UpdateFrequency: "monthly"},
		{Name: "Electricity", SeriesID: "CUSR0000SEHF01", Weight: 2.47, Category: "Housing", Subcategory: "Utilities - Electricity", UpdateFrequency: "monthly"},
		{Name: "Utility (Piped) Gas Service", SeriesID: "CUSR0000SEHF02", Weight: 0.69, Category: "Housing", Subcategory: "Utilities - Natural Gas", UpdateFrequency: "monthly"},
		{Name: "Household Furnishings and Operations", SeriesID: "CUSR0000SAH3", Weight: 4.18, Category: "Housing", Subcategory: "Furnishings and Operations", UpdateFrequency: "monthly"},

		// transportation (~15.2%)
		{Name: "Private Transportation", SeriesID: "CUSR0000SAT1", Weight: 14.04, Category: "Transportation", Subcategory: "Private Transportation", Description: "New and used vehicles, motor fuel, maintenance", UpdateFrequency: "monthly"},
		{Name: "New Vehicles", SeriesID: "CUSR0000SETA01", Weight: 3.98, Category: "Transportation", Subcategory: "Private - New Vehicles", UpdateFrequency: "monthly"},
		{Name: "Used Cars and Trucks", SeriesID: "CUSR0000SETA02", Weight: 2.36, Category: "Transportation", Subcategory: "Private - Used Vehicles", UpdateFrequency: "monthly"},
		{Name: "Motor Fuel (Gasoline)", SeriesID: "CUSR0000SETB01", Weight: 3.01, Category: "Transportation", Subcategory: "Private - Gasoline", UpdateFrequency: "monthly"},
		{Name: "Motor Vehicle Insurance", SeriesID: "CUSR0000SETE", Weight: 2.92, Category: "Transportation", Subcategory: "Private - Insurance", UpdateFrequency: "monthly"},
		{Name: "Motor Vehicle Maintenance and Repair", SeriesID: "CUSR0000SETD", Weight: 1.12, Category: "Transportation", Subcategory: "Private - Maintenance", UpdateFrequency: "monthly"},
		{Name: "Public Transportation", SeriesID: "CUSR0000SAT2", Weight: 1.15, Category: "Transportation", Subcategory: "Public Transportation", UpdateFrequency: "monthly"},
		{Name: "Airline Fares", SeriesID: "CUSR0000SETG01", Weight: 0.59, Category: "Transportation", Subcategory: "Public - Airline", UpdateFrequency: "monthly"},

		// medical care (~8.4%)
		{Name: "Medical Care", SeriesID: "CUSR0000SAM", Weight: 8.35, Category: "Medical Care", Subcategory: "All Medical Care", Description: "Medical care commodities and services", UpdateFrequency: "monthly"},
		{Name: "Medical Care Commodities", SeriesID: "CUSR0000SAM1", Weight: 1.53, Category: "Medical Care", Subcategory: "Commodities", UpdateFrequency: "monthly"},
		{Name: "Prescription Drugs", SeriesID: "CUSR0000SEMF01", Weight: 1.03, Category: "Medical Care", Subcategory: "Commodities - Prescription Drugs", UpdateFrequency: "monthly"},
		{Name: "Medical Care Services", SeriesID: "CUSR0000SAM2", Weight: 6.82, Category: "Medical Care", Subcategory: "Services", UpdateFrequency: "monthly"},
		{Name: "Physicians' Services", SeriesID: "CUSR0000SEMC01", Weight: 1.53, Category: "Medical Care", Subcategory: "Services - Physicians", UpdateFrequency: "monthly"},
		{Name: "Hospital Services", SeriesID: "CUSR0000SEMD01", Weight: 2.17, Category: "Medical Care", Subcategory: "Services - Hospital", UpdateFrequency: "monthly"},
		{Name: "Health Insurance", SeriesID: "CUSR0000SEME", Weight: 0.89, Category: "Medical Care", Subcategory: "Services - Insurance", UpdateFrequency: "monthly"},

		// recreation (~5.3%)
		{Name: "Recreation", SeriesID: "CUSR0000SAR", Weight: 5.31, Category: "Recreation", Subcategory: "All Recreation", Description: "Video and audio, pets, sporting goods, admissions", UpdateFrequency: "monthly"},
		{Name: "Video and Audio", SeriesID: "CUSR0000SERA01", Weight: 1.12, Category: "Recreation", Subcategory: "Video and Audio", UpdateFrequency: "monthly"},
		{Name: "Pets, Pet Products and Services", SeriesID: "CUSR0000SERB", Weight: 1.22, Category: "Recreation", Subcategory: "Pets", UpdateFrequency: "monthly"},
		{Name: "Sporting Goods", SeriesID: "CUSR0000SERC01", Weight: 0.56, Category: "Recreation", Subcategory: "Sporting Goods", UpdateFrequency: "monthly"},
		{Name: "Admissions", SeriesID: "CUSR0000SERF", Weight: 0.78, Category: "Recreation", Subcategory: "Admissions", UpdateFrequency: "monthly"},

		// education and communication (~6.2%)
		{Name: "Education and Communication", SeriesID: "CUSR0000SAE", Weight: 6.18, Category: "Education and Communication", Subcategory: "All Education and Communication", Description: "Tuition, telephone services, computer hardware", UpdateFrequency: "monthly"},
		{Name: "Education", SeriesID: "CUSR0000SAE1", Weight: 2.73, Category: "Education and Communication", Subcategory: "Education", UpdateFrequency: "monthly"},
		{Name: "Tuition, Other School Fees, and Childcare", SeriesID: "CUSR0000SEEB", Weight: 2.73, Category: "Education and Communication", Subcategory: "Education - Tuition", UpdateFrequency: "monthly"},
		{Name: "Communication", SeriesID: "CUSR0000SAE2", Weight: 3.45, Category: "Education and Communication", Subcategory: "Communication", UpdateFrequency: "monthly"},
		{Name: "Telephone Services", SeriesID: "CUSR0000SEED", Weight: 1.89, Category: "Education and Communication", Subcategory: "Communication - Telephone", UpdateFrequency: "monthly"},
		{Name: "Information Technology, Hardware and Services", SeriesID: "CUSR0000SEEE", Weight: 0.87, Category: "Education and Communication", Subcategory: "Communication - IT", UpdateFrequency: "monthly"},

		// other goods and services (~3.7%)
		{Name: "Other Goods and Services", SeriesID: "CUSR0000SAG", Weight: 3.67, Category: "Other Goods and Services", Subcategory: "All Other", Description: "Personal care, tobacco, financial services", UpdateFrequency: "monthly"},
		{Name: "Personal Care", SeriesID: "CUSR0000SAG1", Weight: 2.43, Category: "Other Goods and Services", Subcategory: "Personal Care", UpdateFrequency: "monthly"},
		{Name: "Tobacco and Smoking Products", SeriesID: "CUSR0000SEGA", Weight: 0.52, Category: "Other Goods and Services", Subcategory: "Tobacco", UpdateFrequency: "monthly"},
		{Name: "Personal Care Services", SeriesID: "CUSR0000SEGB", Weight: 1.03, Category: "Other Goods and Services", Subcategory: "Personal Care Services", UpdateFrequency: "monthly"},
	}
}

func defaultHeadline() []Item {
	return []Item{
		{Name: "CPI All Items", SeriesID: "CPIAUCSL", Weight: 100.0, Category: "Headline", Role: RoleHeadline, Description: "Consumer Price Index for All Urban Consumers: All Items", UpdateFrequency: "monthly"},
		{Name: "Core CPI (Less Food and Energy)", SeriesID: "CPILFESL", Weight: 100.0, Category: "Headline", Role: RoleCore, Description: "All Items Less Food and Energy", UpdateFrequency: "monthly"},
		{Name: "CPI Food", SeriesID: "CPIUFDSL", Weight: 13.52, Category: "Headline", Role: RoleFood, UpdateFrequency: "monthly"},
		{Name: "CPI Energy", SeriesID: "CPIENGSL", Weight: 6.87, Category: "Headline", Role: RoleEnergy, UpdateFrequency: "monthly"},
		{Name: "CPI Services", SeriesID: "CUSR0000SAS", Weight: 62.78, Category: "Headline", UpdateFrequency: "monthly"},
		{Name: "CPI Commodities", SeriesID: "CUSR0000SAC", Weight: 37.22, Category: "Headline", UpdateFrequency: "monthly"},
	}
}
