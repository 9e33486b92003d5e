package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/cache"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/session"
	tfsync "github.com/nhle/teamflow/internal/sync"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/internal/ui/command"
	configview "github.com/nhle/teamflow/internal/ui/config"
	"github.com/nhle/teamflow/internal/ui/detail"
	helpview "github.com/nhle/teamflow/internal/ui/help"
	"github.com/nhle/teamflow/internal/ui/login"
	"github.com/nhle/teamflow/internal/ui/meetingmgr"
	"github.com/nhle/teamflow/internal/ui/projectmgr"
	"github.com/nhle/teamflow/internal/ui/taskform"
	"github.com/nhle/teamflow/internal/ui/tasklist"
)

// Poller slots.
const (
	slotTasks    = "tasks"
	slotStats    = "stats"
	slotUsers    = "users"
	slotProjects = "projects"
	slotMeetings = "meetings"
)

// tasksLoaded tags a task list with the key it was read under, so results
// for a scope or status the user has since left are dropped.
type tasksLoaded struct {
	key   cache.Key
	tasks []model.Task
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewDetail
	ViewTaskForm
	ViewProjects
	ViewMeetings
	ViewHelp
	ViewCommand
	ViewSettings
)

// Model is the root Bubble Tea model that manages view routing, layout,
// polling and session expiry.
type Model struct {
	env          ui.Env
	poller       *tfsync.Poller
	logger       *zap.Logger
	currentView  ViewState
	previousView ViewState
	formReturn   ViewState
	frame        ui.Frame
	login        login.Model
	taskList     tasklist.Model
	detail       detail.Model
	taskForm     taskform.Model
	projectView  projectmgr.Model
	meetingView  meetingmgr.Model
	helpView     helpview.Model
	commandView  command.Model
	settings     configview.Model
	status       string
	statusIsErr  bool
	pollErr      bool
	ready        bool
}

// New creates the root model. The session should already be initialised;
// an authenticated session starts on the dashboard.
func New(env ui.Env, poller *tfsync.Poller, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		env:          env,
		poller:       poller,
		logger:       logger,
		currentView:  ViewLogin,
		previousView: ViewDashboard,
		formReturn:   ViewDashboard,
		login:        login.New(env, 80, 24),
		taskList:     tasklist.New(env.Keys, 80, 24),
		detail:       detail.New(env, 80, 24),
		taskForm:     taskform.New(env, 80, 24),
		projectView:  projectmgr.New(env, 80, 24),
		meetingView:  meetingmgr.New(env, 80, 24),
		helpView:     helpview.New(env.Keys, 80, 24),
		commandView:  command.New(80, 24),
		settings:     configview.New(env, 80, 24),
	}
	if env.Session.State().IsAuthenticated {
		m.currentView = ViewDashboard
	}
	return m
}

// Init starts the poller and either the login form or the queries.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return tea.Batch(m.poller.Start(), m.login.Init())
	}
	m.registerQueries()
	return m.poller.Start()
}

// registerQueries subscribes every dashboard resource. The poller loads
// each slot immediately on registration.
func (m Model) registerQueries() {
	svc := m.env.Service
	m.registerTasks()
	m.poller.Register(slotStats, tfsync.Query{
		Key:  service.StatsKey,
		Poll: true,
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			stats, err := svc.Stats(ctx, force)
			return ui.StatsMsg{Stats: stats}, err
		},
	})
	m.poller.Register(slotUsers, tfsync.Query{
		Key: service.UsersKey,
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			users, err := svc.Users(ctx, force)
			return ui.UsersMsg{Users: users}, err
		},
	})
	m.poller.Register(slotProjects, tfsync.Query{
		Key: service.ProjectsKey,
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			projects, err := svc.Projects(ctx, force)
			return ui.ProjectsMsg{Projects: projects}, err
		},
	})
	m.poller.Register(slotMeetings, tfsync.Query{
		Key: service.MeetingsKey,
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			meetings, err := svc.Meetings(ctx, force)
			return ui.MeetingsMsg{Meetings: meetings}, err
		},
	})
}

// tasksKey is the cache key of the task list the dashboard currently shows.
// Only the all-tasks scope filters by status on the server.
func (m Model) tasksKey() cache.Key {
	switch m.taskList.Scope() {
	case tasklist.ScopeMine:
		return service.MyTasksKey
	case tasklist.ScopeWeek:
		return service.WeekTasksKey
	default:
		return service.TasksKey(m.taskList.Criteria().Status)
	}
}

// registerTasks (re)subscribes the task list for the current scope and
// status filter.
func (m Model) registerTasks() {
	svc := m.env.Service
	status := m.taskList.Criteria().Status
	key := m.tasksKey()

	var read func(ctx context.Context, force bool) ([]model.Task, error)
	switch m.taskList.Scope() {
	case tasklist.ScopeMine:
		read = svc.MyTasks
	case tasklist.ScopeWeek:
		read = svc.WeekTasks
	default:
		read = func(ctx context.Context, force bool) ([]model.Task, error) {
			return svc.Tasks(ctx, status, force)
		}
	}

	m.poller.Register(slotTasks, tfsync.Query{
		Key:  key,
		Poll: true,
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			tasks, err := read(ctx, force)
			return tasksLoaded{key: key, tasks: tasks}, err
		},
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame = ui.NewFrame(msg.Width, msg.Height)
		m.ready = true
		w, h := m.frame.Body()
		m.login.SetSize(msg.Width, msg.Height)
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.projectView.SetSize(w, h)
		m.meetingView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settings.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tfsync.ResultMsg:
		return m.handleResult(msg)

	case ui.ErrorMsg:
		return m.handleError(msg.Err, false)

	case ui.NoticeMsg:
		m.setStatus(string(msg), false)
		return m, nil

	case login.LoggedInMsg:
		m.currentView = ViewDashboard
		m.registerQueries()
		m.setStatus("Signed in as "+msg.User.DisplayName(), false)
		return m, nil

	case tasklist.SelectedTaskMsg:
		m.currentView = ViewDetail
		cmd := m.detail.Open(msg.TaskID, m.taskList.Tasks())
		return m, cmd

	case tasklist.StatusFilterChangedMsg:
		if m.taskList.Scope() == tasklist.ScopeAll {
			m.registerTasks()
		}
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewDashboard
		return m, nil

	case detail.EditMsg:
		cmd := m.openTaskForm(&msg.Task, "")
		return m, cmd

	case taskform.SavedMsg:
		m.currentView = m.formReturn
		if msg.Created {
			m.setStatus(fmt.Sprintf("Created task #%s", msg.Task.ID), false)
		} else {
			m.setStatus(fmt.Sprintf("Saved task #%s", msg.Task.ID), false)
		}
		return m, nil

	case taskform.CancelMsg:
		m.currentView = m.formReturn
		return m, nil

	case projectmgr.CloseMsg, meetingmgr.CloseMsg, configview.ConfigDoneMsg:
		m.currentView = ViewDashboard
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case command.UnknownMsg:
		m.currentView = m.previousView
		m.setStatus(fmt.Sprintf("unknown command %q, press ? for the list", msg.Input), true)
		return m, nil

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if !m.pollErr {
			m.status, m.statusIsErr = "", false
		}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys owned by the root model. Only the
// dashboard and help views give up keys; forms and the palette keep them.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	k := m.env.Keys

	if m.currentView == ViewHelp {
		if key.Matches(msg, k.Help) || key.Matches(msg, k.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}
	if m.currentView != ViewDashboard {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, k.Quit):
		m.poller.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, k.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, k.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, k.Refresh):
		m.poller.RefreshAll()
		m.setStatus("Refreshing...", false)
		return m, nil, true

	case key.Matches(msg, k.New):
		cmd := m.openTaskForm(nil, "")
		return m, cmd, true

	case key.Matches(msg, k.Edit):
		if task, ok := m.taskList.SelectedTask(); ok {
			cmd := m.openTaskForm(&task, "")
			return m, cmd, true
		}
		return m, nil, true

	case key.Matches(msg, k.Projects):
		m.currentView = ViewProjects
		return m, nil, true

	case key.Matches(msg, k.Meetings):
		m.currentView = ViewMeetings
		return m, nil, true
	}
	return m, nil, false
}

// openTaskForm shows the create form, or the edit form when task is set.
func (m *Model) openTaskForm(task *model.Task, title string) tea.Cmd {
	m.formReturn = m.currentView
	if m.formReturn != ViewDetail {
		m.formReturn = ViewDashboard
	}
	m.currentView = ViewTaskForm
	m.taskForm.SetOptions(m.taskList.Projects(), m.taskList.Users())
	if task != nil {
		return m.taskForm.StartEdit(*task)
	}
	return m.taskForm.StartCreate(title)
}

// handleResult fans a poller result out to every view that shows it.
func (m Model) handleResult(res tfsync.ResultMsg) (tea.Model, tea.Cmd) {
	wait := m.poller.WaitForNextResult()
	if m.currentView == ViewLogin {
		return m, wait
	}
	if res.Err != nil {
		next, cmd := m.handleError(res.Err, true)
		return next, tea.Batch(wait, cmd)
	}
	if m.pollErr {
		m.status, m.statusIsErr, m.pollErr = "", false, false
	}

	data := res.Msg
	if loaded, ok := data.(tasksLoaded); ok {
		if loaded.key.String() != m.tasksKey().String() {
			return m, wait
		}
		data = ui.TasksMsg{Tasks: loaded.tasks}
	}
	next, cmd := m.broadcast(data)
	return next, tea.Batch(wait, cmd)
}

// broadcast delivers a data message to the views that keep a copy.
func (m Model) broadcast(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.taskList, cmd = m.taskList.Update(msg)
	cmds = append(cmds, cmd)

	if m.currentView == ViewDetail {
		m.detail, cmd = m.detail.Update(msg)
		cmds = append(cmds, cmd)
	} else if _, isTasks := msg.(ui.TasksMsg); !isTasks {
		m.detail, _ = m.detail.Update(msg)
	}

	switch msg.(type) {
	case ui.TasksMsg, ui.ProjectsMsg:
		m.projectView, cmd = m.projectView.Update(msg)
		cmds = append(cmds, cmd)
	case ui.MeetingsMsg:
		m.meetingView, cmd = m.meetingView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleError routes auth failures to the login view and shows every
// other failure in the status bar, keeping loaded data on screen.
func (m Model) handleError(err error, fromPoll bool) (Model, tea.Cmd) {
	if api.IsAuthError(err) || errors.Is(err, session.ErrExpired) {
		if m.currentView == ViewLogin {
			return m, nil
		}
		return m.signOut(m.env.Session.Expire())
	}

	m.logger.Warn("request failed", zap.Bool("poll", fromPoll), zap.Error(err))
	m.setStatus(ui.ErrorText(err), true)
	m.pollErr = fromPoll
	return m, nil
}

// signOut drops every query and cached entry and shows the login form with
// reason as the inline message.
func (m Model) signOut(reason error) (Model, tea.Cmd) {
	m.poller.Reset()
	if err := m.env.Service.Cache().Reset(context.Background()); err != nil {
		m.logger.Warn("resetting cache", zap.Error(err))
	}
	w, h := m.frame.Body()
	m.taskList = tasklist.New(m.env.Keys, w, h)
	m.detail = detail.New(m.env, w, h)
	m.projectView = projectmgr.New(m.env, w, h)
	m.meetingView = meetingmgr.New(m.env, w, h)
	m.currentView = ViewLogin
	m.status, m.statusIsErr, m.pollErr = "", false, false

	text := ""
	if reason != nil {
		text = reason.Error()
	}
	cmd := m.login.Reset(text)
	return m, cmd
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(c command.CommandMsg) (tea.Model, tea.Cmd) {
	switch c.Name {
	case command.All, command.Mine, command.Week:
		scope := map[command.Name]tasklist.Scope{
			command.All:  tasklist.ScopeAll,
			command.Mine: tasklist.ScopeMine,
			command.Week: tasklist.ScopeWeek,
		}[c.Name]
		m.currentView = ViewDashboard
		cmd := m.taskList.SetScope(scope)
		m.registerTasks()
		return m, cmd

	case command.NewTask:
		cmd := m.openTaskForm(nil, strings.Join(c.Args, " "))
		return m, cmd

	case command.Projects:
		m.currentView = ViewProjects
		return m, nil

	case command.Meetings:
		m.currentView = ViewMeetings
		return m, nil

	case command.Refresh:
		m.poller.RefreshAll()
		return m, nil

	case command.Settings:
		m.settings.Open()
		m.currentView = ViewSettings
		return m, nil

	case command.Clear:
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.ClearFilters()
		return m, cmd

	case command.Logout:
		if err := m.env.Session.Logout(); err != nil {
			m.logger.Warn("logout", zap.Error(err))
		}
		return m.signOut(nil)

	case command.Quit:
		m.poller.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
	m.pollErr = false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewDashboard:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewMeetings:
		m.meetingView, cmd = m.meetingView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	}

	return m, cmd
}

// View renders the title bar, the active view and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.currentView == ViewLogin {
		return m.login.View()
	}

	user := ""
	if u := m.env.Session.User(); u != nil {
		user = u.DisplayName()
	}
	title := m.frame.TitleBar(m.section(), user, m.pollErr)
	status := m.frame.StatusBar(m.keyHints(), m.status, m.statusIsErr)

	return m.frame.Compose(title, m.renderContent(), status)
}

// section names the active view in the title bar.
func (m Model) section() string {
	switch m.currentView {
	case ViewDashboard:
		return "Tasks"
	case ViewDetail:
		return "Task"
	case ViewTaskForm:
		return "Task form"
	case ViewProjects:
		return "Projects"
	case ViewMeetings:
		return "Meetings"
	case ViewHelp:
		return "Help"
	case ViewSettings:
		return "Settings"
	}
	return ""
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewProjects:
		return m.projectView.View()
	case ViewMeetings:
		return m.meetingView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settings.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | 1-4 status | t take | A assign | o project | e edit | d delete"
	case ViewTaskForm:
		return "enter next | shift+tab back | ctrl+c quit"
	case ViewProjects:
		return "n new | e edit | a activate | d delete | esc back"
	case ViewMeetings:
		return "n new | e edit | d delete | esc back"
	case ViewSettings:
		return "e edit | esc back"
	default:
		return "q quit | ? help | : command | n new | enter open | s/p/a filter | x clear | r refresh"
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Status returns the status bar message and whether it is an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusIsErr
}
