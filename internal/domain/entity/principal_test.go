package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

func TestPermissionSet_VistaAnidadaConsistenteConPlana(t *testing.T) {
	flat := []entity.Permission{
		{Module: "misiones", Action: "aprobar"},
		{Module: "misiones", Action: "ver"},
		{Module: "roles", Action: "ver"},
	}
	set := entity.NewPermissionSet(flat)

	for _, p := range flat {
		assert.True(t, set.Allows(p.Module, p.Action), p.Code())
	}
	assert.False(t, set.Allows("misiones", "pagar"))
	assert.Equal(t, []string{"misiones.aprobar", "misiones.ver", "roles.ver"}, set.Codes())
}

func TestPermissionSet_NilNiegaTodo(t *testing.T) {
	var set entity.PermissionSet
	assert.False(t, set.Allows("misiones", "ver"))
	assert.Empty(t, set.Codes())
}

func TestEmployee_CapacidadesComunes(t *testing.T) {
	var p entity.Principal = &entity.Employee{
		Cedula:             "8-123-456",
		DepartmentID:       3,
		EmployeeRole:       entity.EmployeeRoleDepartmentHead,
		ManagedDepartments: []int{7},
	}
	assert.Equal(t, "8-123-456", p.PrincipalID())
	assert.Equal(t, 2, p.RoleID())
	assert.Equal(t, "Jefe Inmediato", p.Role().RoleName())
	assert.True(t, p.ManagesDepartment(7))
	assert.False(t, p.ManagesDepartment(8))
	assert.Equal(t, 3, p.HomeDepartment())
	assert.Equal(t, []int{7}, p.ManagedDepartmentIDs())
	assert.True(t, p.IsDepartmentHead())
}

func TestFinancialUser_NoDirigeDepartamentos(t *testing.T) {
	var p entity.Principal = &entity.FinancialUser{ID: 42, RoleRef: entity.FinancialRole{ID: 3, Name: "Analista Tesorería"}, DepartmentID: 5}
	assert.Equal(t, "42", p.PrincipalID())
	assert.Equal(t, 3, p.RoleID())
	assert.False(t, p.ManagesDepartment(7))
	assert.Equal(t, 5, p.HomeDepartment())
	assert.Empty(t, p.ManagedDepartmentIDs())
	assert.False(t, p.IsDepartmentHead())
}

func TestMission_PreparedBy(t *testing.T) {
	m := &entity.Mission{PreparerID: "42", PreparerKind: entity.PrincipalFinancialUser}

	assert.True(t, m.PreparedBy(&entity.FinancialUser{ID: 42}))
	assert.False(t, m.PreparedBy(&entity.Employee{Cedula: "42"}), "mismo id en otro origen no es el preparador")
	assert.False(t, m.PreparedBy(nil))
}

func TestMission_ItemsTotal(t *testing.T) {
	d := decimal.RequireFromString
	m := &entity.Mission{
		Type: workflow.MissionTypeViaticos,
		PerDiemItems: []entity.PerDiemItem{
			{Breakfast: d("5.00"), Lunch: d("10.00"), Dinner: d("10.00"), Lodging: d("75.00")},
		},
		TransportItems: []entity.TransportItem{{Amount: d("1400.00")}},
	}
	assert.True(t, d("1500.00").Equal(m.ItemsTotal()))
}
