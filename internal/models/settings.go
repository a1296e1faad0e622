package models

type Employee struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Role string `json:"role,omitempty"`
}

// GlobalConfig is the document kept under configs/global_configs.
type GlobalConfig struct {
	PhoneNumber string     `json:"phoneNumber"`
	Employees   []Employee `json:"employees" validate:"dive"`
}

// Employee returns the employee with id.
func (g GlobalConfig) Employee(id string) (Employee, bool) {
	for _, e := range g.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}
