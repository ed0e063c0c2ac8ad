package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) GetTeam(ctx context.Context, teamID string) (Team, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(description, ''), department_id::text, COALESCE(leader_id::text, ''), created_at
    FROM teams
    WHERE id = $1
  `, teamID)

	var team Team
	err := row.Scan(&team.ID, &team.Name, &team.Description, &team.DepartmentID, &team.LeaderID, &team.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, ErrTeamNotFound
	}
	if err != nil {
		return Team{}, err
	}

	team.MemberIDs, err = s.teamMemberIDs(ctx, teamID)
	if err != nil {
		return Team{}, err
	}
	team.Projects, err = s.teamProjects(ctx, teamID)
	if err != nil {
		return Team{}, err
	}
	return team, nil
}

func (s *Store) ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]Team, int, error) {
	where := " FROM teams WHERE 1=1"
	args := []any{}
	if departmentID != "" {
		where += " AND department_id = $1"
		args = append(args, departmentID)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, name, COALESCE(description, ''), department_id::text, COALESCE(leader_id::text, ''), created_at" + where
	if departmentID != "" {
		query += " ORDER BY name LIMIT $2 OFFSET $3"
	} else {
		query += " ORDER BY name LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var team Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.DepartmentID, &team.LeaderID, &team.CreatedAt); err != nil {
			return nil, 0, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range teams {
		teams[i].MemberIDs, err = s.teamMemberIDs(ctx, teams[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return teams, total, nil
}

func (s *Store) CreateTeam(ctx context.Context, team Team) (Team, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO teams (name, description, department_id, leader_id)
    VALUES ($1, $2, $3, $4)
    RETURNING id, created_at
  `, team.Name, team.Description, team.DepartmentID, nullIfEmpty(team.LeaderID))

	created := team
	err := row.Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Team{}, ErrTeamNameTaken
			case "23503":
				return Team{}, ErrDepartmentNotFound
			}
		}
		return Team{}, err
	}
	if created.MemberIDs == nil {
		created.MemberIDs = []string{}
	}
	return created, nil
}

func (s *Store) UpdateTeam(ctx context.Context, teamID string, team Team) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE teams
    SET name = $2, description = $3, department_id = $4, leader_id = $5
    WHERE id = $1
  `, teamID, team.Name, team.Description, team.DepartmentID, nullIfEmpty(team.LeaderID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrTeamNameTaken
			case "23503":
				return ErrDepartmentNotFound
			}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, teamID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM teams WHERE id = $1", teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// AddTeamMember is idempotent: adding an existing member is a no-op.
func (s *Store) AddTeamMember(ctx context.Context, teamID, employeeID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO team_members (team_id, employee_id)
    VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, teamID, employeeID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return memberFKError(pgErr.ConstraintName)
		}
		return err
	}
	return nil
}

// memberFKError tells a missing team apart from a missing employee by the
// violated constraint.
func memberFKError(constraint string) error {
	if constraint == "team_members_team_id_fkey" {
		return ErrTeamNotFound
	}
	return ErrEmployeeNotFound
}

func (s *Store) RemoveTeamMember(ctx context.Context, teamID, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM team_members WHERE team_id = $1 AND employee_id = $2", teamID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) CreateProject(ctx context.Context, project Project) (Project, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO team_projects (team_id, name, description, status, start_date, end_date)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id, created_at
  `, project.TeamID, project.Name, project.Description, project.Status, project.StartDate, project.EndDate)

	created := project
	err := row.Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Project{}, ErrTeamNotFound
		}
		return Project{}, err
	}
	return created, nil
}

func (s *Store) UpdateProject(ctx context.Context, projectID string, project Project) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE team_projects
    SET name = $2, description = $3,
        status = COALESCE(NULLIF($4, ''), status),
        start_date = $5, end_date = $6
    WHERE id = $1
  `, projectID, project.Name, project.Description, project.Status, project.StartDate, project.EndDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM team_projects WHERE id = $1", projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Store) teamMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT employee_id::text FROM team_members WHERE team_id = $1 ORDER BY added_at", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (s *Store) teamProjects(ctx context.Context, teamID string) ([]Project, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, team_id::text, name, COALESCE(description, ''), status, start_date, end_date, created_at
    FROM team_projects
    WHERE team_id = $1
    ORDER BY created_at
  `, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
